package achievement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/achievement"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
)

func newUser() *entity.User {
	return &entity.User{Username: "tester", Level: 1, Badges: entity.Badges{}}
}

func TestEvaluate_NoCounters(t *testing.T) {
	assert.Empty(t, achievement.Evaluate(newUser()))
}

func TestEvaluate_Thresholds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(u *entity.User)
		want   []string
	}{
		{"first report", func(u *entity.User) { u.TotalReports = 1 }, []string{achievement.FirstReport}},
		{"ten reports", func(u *entity.User) { u.TotalReports = 10 }, []string{achievement.FirstReport, achievement.TenReports}},
		{"four completions", func(u *entity.User) { u.TotalCompleted = 4 }, nil},
		{"five completions", func(u *entity.User) { u.TotalCompleted = 5 }, []string{achievement.FiveCompletions}},
		{"rich", func(u *entity.User) { u.Points = 500 }, []string{achievement.RichVolunteer}},
		{"almost rich", func(u *entity.User) { u.Points = 499 }, nil},
		{"experienced", func(u *entity.User) { u.Experience = 1000 }, []string{achievement.Experienced}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUser()
			tc.mutate(u)

			var names []string
			for _, rule := range achievement.Evaluate(u) {
				names = append(names, rule.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	u := newUser()
	u.TotalReports = 10
	u.Points = 600
	now := time.Now()

	first := achievement.Apply(u, now)
	require.Len(t, first, 3)

	second := achievement.Apply(u, now.Add(time.Minute))
	assert.Empty(t, second)
	assert.Len(t, u.Badges, 3)
	assert.Equal(t, []string{achievement.FirstReport, achievement.TenReports, achievement.RichVolunteer}, u.Badges.Names())
}

func TestApply_NeverRevokes(t *testing.T) {
	u := newUser()
	u.Points = 500
	achievement.Apply(u, time.Now())

	u.Points = 10
	achievement.Apply(u, time.Now())

	assert.True(t, u.Badges.Has(achievement.RichVolunteer))
}

func TestApplyFirstOrder(t *testing.T) {
	u := newUser()

	_, ok := achievement.ApplyFirstOrder(u, 2, time.Now())
	assert.False(t, ok)

	badge, ok := achievement.ApplyFirstOrder(u, 0, time.Now())
	require.True(t, ok)
	assert.Equal(t, achievement.FirstOrder, badge.Name)

	_, ok = achievement.ApplyFirstOrder(u, 0, time.Now())
	assert.False(t, ok)
	assert.Len(t, u.Badges, 1)
}

func TestGenericRulesSkipFirstOrder(t *testing.T) {
	for _, rule := range achievement.Rules {
		assert.NotEqual(t, achievement.FirstOrder, rule.Name)
	}
}
