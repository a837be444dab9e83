package application

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/backend"
	"github.com/cabgo/rider-web/internal/common/auth"
	"github.com/cabgo/rider-web/internal/common/domain"
)

// defaultDialCode is prefixed to ten-digit local numbers.
const defaultDialCode = "+91"

var validate = validator.New()

type passwordCredentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type otpCredentials struct {
	Phone string `validate:"required,e164"`
	Code  string `validate:"omitempty,number,min=4,max=8"`
}

var fieldMessages = map[string]string{
	"Email":    "please enter a valid email address",
	"Password": "password is required",
	"Phone":    "please enter a valid phone number",
	"Code":     "please enter the code we sent you",
}

// validationError reports the first failed field as a ValidationError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := fieldMessages[fieldErrs[0].Field()]; ok {
			return domain.NewValidationError(msg)
		}
		return domain.NewValidationError(fieldErrs[0].Error())
	}
	return domain.NewValidationError(err.Error())
}

// AuthAPI is the backend's sign-in surface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*backend.AuthResult, error)
	GoogleSignIn(ctx context.Context, idToken string) (*backend.AuthResult, error)
}

// AuthService runs the sign-in flows. Input is checked locally before calling the backend.
type AuthService struct {
	api    AuthAPI
	logger *zap.Logger
}

func NewAuthService(api AuthAPI, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, logger: logger}
}

// Login signs in with email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Identity, error) {
	creds := passwordCredentials{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(creds); err != nil {
		return nil, validationError(err)
	}

	res, err := s.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	return s.identityFrom(res, "password")
}

// SendOTP asks the backend to text a one-time code.
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	creds := otpCredentials{Phone: normalizePhone(phone)}
	if err := validate.Struct(creds); err != nil {
		return validationError(err)
	}
	return s.api.SendOTP(ctx, creds.Phone)
}

// VerifyOTP signs in with a phone number and the code sent to it.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*Identity, error) {
	creds := otpCredentials{Phone: normalizePhone(phone), Code: strings.TrimSpace(code)}
	if creds.Code == "" {
		return nil, domain.NewValidationError(fieldMessages["Code"])
	}
	if err := validate.Struct(creds); err != nil {
		return nil, validationError(err)
	}

	res, err := s.api.VerifyOTP(ctx, creds.Phone, creds.Code)
	if err != nil {
		return nil, err
	}
	return s.identityFrom(res, "otp")
}

// GoogleSignIn exchanges a Google ID token.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, domain.NewValidationError("google credential is required")
	}

	res, err := s.api.GoogleSignIn(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.identityFrom(res, "google")
}

// identityFrom prefers claims from the token and falls back to the user record for
// backends issuing opaque tokens.
func (s *AuthService) identityFrom(res *backend.AuthResult, method string) (*Identity, error) {
	if res == nil || res.Token == "" {
		return nil, domain.NewNetworkError("sign-in reply did not include a session", nil)
	}

	id := &Identity{
		UserID: res.User.ID,
		Name:   res.User.Name,
		Email:  res.User.Email,
		Phone:  res.User.Phone,
		Role:   auth.Role(res.User.Role),
		Token:  res.Token,
	}

	if claims, err := auth.ParseUnverified(res.Token); err != nil {
		s.logger.Debug("session token is not a JWT, using user record", zap.Error(err))
	} else {
		if claims.UserID != "" {
			id.UserID = claims.UserID
		}
		if claims.Role != "" {
			id.Role = claims.Role
		}
		if id.Email == "" {
			id.Email = claims.Email
		}
		if id.Phone == "" {
			id.Phone = claims.Phone
		}
		id.ExpiresAt = claims.Expiry()
	}

	if id.UserID == "" {
		return nil, domain.NewNetworkError("sign-in reply did not identify the user", nil)
	}
	if id.Role == "" {
		id.Role = auth.RoleRider
	}

	s.logger.Info("rider signed in",
		zap.String("user_id", id.UserID),
		zap.String("method", method),
		zap.String("role", string(id.Role)),
	)
	return id, nil
}

// normalizePhone strips formatting and puts the number in E.164 form. Ten-digit
// numbers get the default dial code, with or without a leading trunk zero.
func normalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(strings.TrimSpace(phone))
	switch {
	case p == "", strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "00"):
		return "+" + p[2:]
	case len(p) == 11 && p[0] == '0':
		return defaultDialCode + p[1:]
	case len(p) == 10:
		return defaultDialCode + p
	}
	return "+" + p
}
