package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) personConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "persons_username_key":
			h.badRequest(w, r, errors.New("用户名已存在"))
		case "persons_email_key":
			h.badRequest(w, r, errors.New("邮箱已存在"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "更新人员信息失败，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.repository.GetAllPersons()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取人员列表成功", persons)
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string   `json:"username" validate:"required"`
		FirstName   string   `json:"firstName" validate:"required"`
		LastName    string   `json:"lastName"`
		Email       string   `json:"email" validate:"required,email"`
		Permissions []string `json:"permissions" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	permissions, err := utils.ParsePermissions(req.Permissions)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机密码
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	person := &domain.Person{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Permissions:  permissions,
	}

	if err := h.repository.CreatePerson(person); err != nil {
		h.personConstraintError(w, r, err)
		return
	}

	if err := h.mailer.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   person.Email,
		Data: domain.CreateUserMailData{
			FullName: person.NiceName(),
			Username: person.Username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "人员创建成功", person)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person := r.Context().Value(PersonInfoCtx).(*domain.Person)
	h.successResponse(w, r, "获取人员信息成功", person)
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName   *string  `json:"firstName"`
		LastName    *string  `json:"lastName"`
		Email       *string  `json:"email" validate:"omitempty,email"`
		Permissions []string `json:"permissions" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	person := r.Context().Value(PersonInfoCtx).(*domain.Person)

	if req.FirstName != nil {
		person.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		person.LastName = *req.LastName
	}
	if req.Email != nil {
		person.Email = *req.Email
	}
	if req.Permissions != nil {
		permissions, err := utils.ParsePermissions(req.Permissions)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		person.Permissions = permissions
	}

	if err := h.repository.UpdatePerson(person); err != nil {
		h.personConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新人员信息成功", person)
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	person := r.Context().Value(PersonInfoCtx).(*domain.Person)

	if err := h.repository.DeletePerson(person.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除人员成功", nil)
}

func (h *Handler) UpdatePersonPassword(w http.ResponseWriter, r *http.Request) {
	person := r.Context().Value(PersonInfoCtx).(*domain.Person)

	var req struct {
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

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	person.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdatePerson(person); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}

func (h *Handler) GetPersonBasedata(w http.ResponseWriter, r *http.Request) {
	person := r.Context().Value(PersonInfoCtx).(*domain.Person)

	basedata, err := h.repository.GetBasedataByPersonID(person.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 没有基础数据时返回空的基础数据
			h.successResponse(w, r, "获取人员基础数据成功", &domain.PersonBasedata{PersonID: person.ID})
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取人员基础数据成功", basedata)
}

func (h *Handler) SavePersonBasedata(w http.ResponseWriter, r *http.Request) {
	person := r.Context().Value(PersonInfoCtx).(*domain.Person)

	var req struct {
		PersonnelNumber       string `json:"personnelNumber" validate:"max=20"`
		AdditionalInformation string `json:"additionalInformation" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	basedata := &domain.PersonBasedata{
		PersonID:              person.ID,
		PersonnelNumber:       req.PersonnelNumber,
		AdditionalInformation: req.AdditionalInformation,
	}
	if err := h.repository.SaveBasedata(basedata); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存人员基础数据成功", basedata)
}
