package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const inactivePersonMessage = "您已离职"

var errUnknownPerson = errors.New("person does not exist or is inactive")

type AuthClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// issueToken 为 person 签发 JWT，配置中的过期时间以秒为单位
func (h *Handler) issueToken(person *domain.Person, now time.Time) (string, time.Time, error) {
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	roles := make([]string, 0, len(person.Permissions))
	for _, role := range person.Permissions {
		roles = append(roles, string(role))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(person.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return ss, expiration, nil
}

// setAuthCookie 通过 http-only 的 cookie 保存 token，value 为空时清除
func (h *Handler) setAuthCookie(w http.ResponseWriter, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
	}
	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
}

// activePersonByUsername 离职人员与不存在的用户同样返回 errUnknownPerson
func (h *Handler) activePersonByUsername(username string) (*domain.Person, error) {
	person, err := h.repository.GetPersonByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUnknownPerson
		}
		return nil, err
	}
	if !person.IsActive() {
		return nil, errUnknownPerson
	}
	return person, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	person, err := h.repository.GetPersonByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 密码正确之后才提示离职，避免泄露账号状态
	if !person.IsActive() {
		h.errorResponse(w, r, inactivePersonMessage)
		return
	}

	ss, expiration, err := h.issueToken(person, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.setAuthCookie(w, ss, expiration)

	h.successResponse(w, r, "登录成功", person)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setAuthCookie(w, "", time.Now().Add(-time.Hour))
	h.successResponse(w, r, "登出成功", nil)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	person, err := h.activePersonByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownPerson):
			// 用户不存在时同样返回成功，防止接口被用来猜测用户名
			h.successResponse(w, r, "重置密码所需验证码已通过邮件发送", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp, err := h.issueOTP(r, resetPasswordOTPKey(person.Username))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.mailer.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   person.Email,
		Data: domain.ResetPasswordMailData{
			FullName:   person.NiceName(),
			OTP:        otp,
			Expiration: h.otpExpirationMinutes(),
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重置密码所需验证码已通过邮件发送", nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	key := resetPasswordOTPKey(req.Username)
	ok, err := h.checkOTP(r, key, req.OTP)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "验证码错误")
		return
	}

	person, err := h.activePersonByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownPerson):
			h.errorResponse(w, r, "验证码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	person.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdatePerson(person); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 验证码只能使用一次
	if err := h.dropOTP(r, key); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重置密码成功", nil)
}
