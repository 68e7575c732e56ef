package figcms

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// publicUser is the serializable slice of an admin account returned by
// the auth endpoints.
func publicUser(u AdminUser) echo.Map {
	return echo.Map{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}
}

func (a *App) handleLogin(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.Email == "" || in.Password == "" {
		return invalidInput("Email and password are required")
	}

	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return Fail(c, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}

	user, err := a.Store.GetActiveAdminByEmail(in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.loginLimiter.Record(ip)
			return ErrInvalidCredentials
		}
		return err
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		a.loginLimiter.Record(ip)
		return ErrInvalidCredentials
	}

	if err := a.Store.TouchLastLogin(user.ID); err != nil {
		return err
	}
	token, err := SignSession([]byte(a.Config.JWTSecret), user, time.Now())
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"token": token, "user": publicUser(user)})
}

func (a *App) handleVerify(c echo.Context) error {
	var in struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.Token == "" {
		return invalidInput("Token is required")
	}

	claims, err := ParseSession([]byte(a.Config.JWTSecret), in.Token)
	if err != nil {
		return err
	}
	// A token outlives neither its expiry nor the account's active flag.
	user, err := a.Store.GetAdminByID(claims.Subject)
	if err != nil || !user.IsActive {
		return ErrInvalidToken
	}
	return OK(c, http.StatusOK, echo.Map{"user": publicUser(user)})
}

func (a *App) handleForgotPassword(c echo.Context) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.Email == "" {
		return invalidInput("Email is required")
	}

	// The answer never reveals whether the account exists.
	const genericMsg = "If an account with that email exists, a password reset link has been sent."

	user, err := a.Store.GetActiveAdminByEmail(in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OK(c, http.StatusOK, echo.Map{"message": genericMsg})
		}
		return err
	}

	token, err := NewResetToken()
	if err != nil {
		return err
	}
	if err := a.Store.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/admin/reset-password?token=%s", a.Config.SiteURL, token)
	if err := a.Mailer.SendPasswordReset(user.Email, user.Name, link); err != nil {
		// The token stays stored; a retry of the request reuses the flow.
		return &UpstreamError{Msg: "Failed to send reset email. Please try again.", Err: err}
	}
	return OK(c, http.StatusOK, echo.Map{"message": genericMsg})
}

func (a *App) handleResetPassword(c echo.Context) error {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.Token == "" || in.Password == "" {
		return invalidInput("Token and password are required")
	}
	if len(in.Password) < minPasswordLen {
		return invalidInput("Password must be at least 6 characters long")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := a.Store.ConsumeResetToken(in.Token, hash, time.Now()); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return Fail(c, http.StatusBadRequest, "Invalid or expired reset token")
		}
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"message": "Password has been reset successfully. You can now log in with your new password."})
}

func (a *App) handleCreateAdmin(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return invalidInput("Email, password, and name are required")
	}
	if len(in.Password) < minPasswordLen {
		return invalidInput("Password must be at least 6 characters long")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return err
	}
	user, err := a.Store.CreateAdmin(in.Email, hash, in.Name, in.Role)
	if err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			return Fail(c, http.StatusConflict, ce.Error())
		}
		return err
	}

	loginURL := a.Config.SiteURL + "/admin/login"
	if err := a.Mailer.SendAdminWelcome(user.Email, user.Name, loginURL); err != nil {
		c.Logger().Errorf("welcome email failed: %v", err)
	}
	return OK(c, http.StatusCreated, echo.Map{"message": "Admin user created successfully", "user": publicUser(user)})
}

func (a *App) handleContact(c echo.Context) error {
	var form ContactForm
	if err := c.Bind(&form); err != nil {
		return invalidInput("Invalid request body")
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Brand = strings.TrimSpace(form.Brand)
	form.Vision = strings.TrimSpace(form.Vision)
	if form.Name == "" || form.Email == "" || form.Brand == "" || form.Vision == "" {
		return invalidInput("All fields are required")
	}
	if !emailPattern.MatchString(form.Email) {
		return invalidInput("Please enter a valid email address")
	}

	if err := a.Mailer.SendContactNotification(form); err != nil {
		return &UpstreamError{Msg: "Failed to send message. Please try again.", Err: err}
	}
	return OK(c, http.StatusOK, echo.Map{"message": "Thank you for your message! We'll get back to you soon."})
}
