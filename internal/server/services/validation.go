package services

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// bcrypt refuses longer input.
const maxPasswordBytes = 72

var emailRule = validation.Match(regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)).Error("must be a valid email address")

// RegisterInput is the payload of Register.
type RegisterInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(3, 0)),
		validation.Field(&r.Email, validation.Required, emailRule),
		validation.Field(&r.Password, validation.Required, validation.Length(8, maxPasswordBytes)),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

// LoginInput is the payload of Login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, emailRule),
		validation.Field(&r.Password, validation.Required),
	)
}

// RecoverInput is the payload of RecoverAccount.
type RecoverInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Token           string `json:"token"`
}

func (r RecoverInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, maxPasswordBytes)),
		validation.Field(&r.ConfirmPassword, validation.Required),
		validation.Field(&r.Token, validation.Required),
	)
}

func validateEmail(email string) error {
	return validation.Errors{"email": validation.Validate(email, validation.Required, emailRule)}.Filter()
}

func validateToken(token string) error {
	return validation.Errors{"token": validation.Validate(token, validation.Required)}.Filter()
}

// passwordStrength applies the entropy floor when one is configured.
func passwordStrength(minEntropy float64) validation.Rule {
	return validation.By(func(value interface{}) error {
		if minEntropy <= 0 {
			return nil
		}
		s, _ := value.(string)
		if err := passwordvalidator.Validate(s, minEntropy); err != nil {
			return errors.New("password is too weak")
		}
		return nil
	})
}
