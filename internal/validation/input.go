package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength       = 3
	MaxUsernameLength       = 30
	MaxEmailLength          = 254
	MinProblemTitleLength   = 3
	MaxProblemTitleLength   = 200
	MaxProblemDescription   = 5000
	MaxComplaintDescription = 2000
	MaxCityLength           = 100
	MaxAddressLength        = 500
	MaxPhoneLength          = 32
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailLocal    = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomain   = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s\-()]{5,}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email слишком длинный")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("некорректный формат email")
	}
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if !emailLocal.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomain.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только латинские буквы, цифры и подчеркивание")
	}
	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}
	return nil
}

// ValidateProblemTitle проверяет заголовок проблемы.
func ValidateProblemTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("заголовок обязателен")
	}
	return ValidateLength("заголовок", title, MinProblemTitleLength, MaxProblemTitleLength)
}

// ValidateProblemDescription проверяет описание проблемы; пустое описание допустимо.
func ValidateProblemDescription(description string) error {
	return ValidateLength("описание", strings.TrimSpace(description), 0, MaxProblemDescription)
}

// ValidateComplaintDescription проверяет текст жалобы.
func ValidateComplaintDescription(description string) error {
	return ValidateLength("описание жалобы", strings.TrimSpace(description), 0, MaxComplaintDescription)
}

// ValidateCity проверяет название города.
func ValidateCity(city string) error {
	return ValidateLength("город", strings.TrimSpace(city), 0, MaxCityLength)
}

// ValidateDelivery проверяет адрес и телефон доставки заказа.
func ValidateDelivery(address, phone string) error {
	if err := ValidateNonEmpty("адрес доставки", address); err != nil {
		return err
	}
	if err := ValidateLength("адрес доставки", strings.TrimSpace(address), 0, MaxAddressLength); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if len(phone) > MaxPhoneLength || !phoneRegex.MatchString(phone) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}
