package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"
)

func resetPasswordOTPKey(username string) string {
	return fmt.Sprintf("otp_%s_reset_password", username)
}

func changeEmailOTPKey(username, email string) string {
	return fmt.Sprintf("otp_%s_change_email_to_%s", username, email)
}

// otpExpirationMinutes 邮件中显示的有效期，配置以秒为单位
func (h *Handler) otpExpirationMinutes() int {
	return h.config.OTP.Expiration / 60
}

// issueOTP 生成验证码并写入 key，旧的验证码会被覆盖
func (h *Handler) issueOTP(r *http.Request, key string) (string, error) {
	ctx, cancel := h.redisContext(r)
	defer cancel()

	otp := utils.GenerateRandomOTP()
	if err := h.redisClient.Set(ctx, key, otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		return "", err
	}
	return otp, nil
}

// checkOTP 校验 key 下的验证码，不存在或已过期时返回 false
func (h *Handler) checkOTP(r *http.Request, key, given string) (bool, error) {
	ctx, cancel := h.redisContext(r)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(otp), []byte(given)) == 1, nil
}

// dropOTP 删除已经使用过的验证码
func (h *Handler) dropOTP(r *http.Request, key string) error {
	ctx, cancel := h.redisContext(r)
	defer cancel()

	return h.redisClient.Del(ctx, key).Err()
}
