// Package achievement начисляет бейджи по счётчикам активности пользователя.
package achievement

import (
	"time"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
)

// Rule - порог, при достижении которого выдаётся бейдж.
type Rule struct {
	Name    string
	Icon    string
	Reached func(u *entity.User) bool
}

const (
	FirstReport     = "Первая проблема"
	TenReports      = "10 проблем"
	FiveCompletions = "5 решений"
	RichVolunteer   = "Богатый волонтер"
	Experienced     = "Опытный волонтер"
	FirstOrder      = "Первый заказ"
)

// Rules - общие правила; "Первый заказ" выдаётся отдельно при оформлении заказа.
var Rules = []Rule{
	{Name: FirstReport, Icon: "fa-map-marker-alt", Reached: func(u *entity.User) bool { return u.TotalReports >= 1 }},
	{Name: TenReports, Icon: "fa-flag", Reached: func(u *entity.User) bool { return u.TotalReports >= 10 }},
	{Name: FiveCompletions, Icon: "fa-check-circle", Reached: func(u *entity.User) bool { return u.TotalCompleted >= 5 }},
	{Name: RichVolunteer, Icon: "fa-coins", Reached: func(u *entity.User) bool { return u.Points >= 500 }},
	{Name: Experienced, Icon: "fa-star", Reached: func(u *entity.User) bool { return u.Experience >= 1000 }},
}

const firstOrderIcon = "fa-shopping-bag"

// Evaluate возвращает правила, которые пользователь выполнил, но бейджи по которым ещё не получил.
// Пользователь не изменяется.
func Evaluate(u *entity.User) []Rule {
	var earned []Rule
	for _, rule := range Rules {
		if rule.Reached(u) && !u.Badges.Has(rule.Name) {
			earned = append(earned, rule)
		}
	}
	return earned
}

// Apply выдаёт все заслуженные бейджи и возвращает только новые.
func Apply(u *entity.User, now time.Time) []entity.Badge {
	var awarded []entity.Badge
	for _, rule := range Evaluate(u) {
		if u.AwardBadge(rule.Name, rule.Icon, now) {
			awarded = append(awarded, u.Badges[len(u.Badges)-1])
		}
	}
	return awarded
}

// ApplyFirstOrder выдаёт "Первый заказ", если до текущего заказа у пользователя не было заказов.
func ApplyFirstOrder(u *entity.User, priorOrders int, now time.Time) (entity.Badge, bool) {
	if priorOrders != 0 || !u.AwardBadge(FirstOrder, firstOrderIcon, now) {
		return entity.Badge{}, false
	}
	return u.Badges[len(u.Badges)-1], true
}
