package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/flash"
)

const (
	flashApplicationForm       = "applicationForm"
	flashErrors                = "errors"
	flashApplySuccess          = "applySuccess"
	flashEditSuccess           = "editSuccess"
	flashFilterPeriodIncorrect = "filterPeriodIncorrect"
)

// flash 属性的目标页面，与重定向的路径一致
const (
	newApplicationPath = "/applications/new"
	sickDaysPath       = "/sickdays"
)

func applicationPath(id int64) string {
	return fmt.Sprintf("/applications/%d", id)
}

func editApplicationPath(id int64) string {
	return fmt.Sprintf("/applications/%d/edit", id)
}

func (h *Handler) redisContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

// addFlash 写入只在下一次访问 target 时可见的属性
func (h *Handler) addFlash(r *http.Request, personID int64, target string, attributes map[string]any) error {
	ctx, cancel := h.redisContext(r)
	defer cancel()

	for name, value := range attributes {
		if err := h.flash.Add(ctx, personID, target, name, value); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) popFlash(r *http.Request, personID int64, target string) (flash.Attributes, error) {
	ctx, cancel := h.redisContext(r)
	defer cancel()

	return h.flash.Pop(ctx, personID, target)
}

// 表单提交后使用 303 重定向，浏览器刷新时不会重复提交
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
