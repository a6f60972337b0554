package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/absence"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/application"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/flash"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/sickdays"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/specialleave"
	"github.com/unrolled/secure"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	mailer        application.MailPublisher
	redisClient   *redis.Client
	flash         *flash.Store
	formValidator *application.FormValidator
	workflow      *application.Workflow
	overview      *sickdays.OverviewService
	statistics    *sickdays.StatisticsService
	absences      *absence.Service
	specialLeave  *specialleave.Service

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailer application.MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	formValidator, err := application.NewFormValidator()
	if err != nil {
		return nil, err
	}

	times, err := absence.NewTimeConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		mailer:        mailer,
		redisClient:   rdb,
		flash:         flash.NewStore(rdb, time.Duration(cfg.Flash.Expiration)*time.Second),
		formValidator: formValidator,
		workflow:      application.NewWorkflow(repo, mailer),
		overview:      sickdays.NewOverviewService(repo),
		statistics:    sickdays.NewStatisticsService(repo),
		absences:      absence.NewService(repo, times),
		specialLeave:  specialleave.NewService(repo),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
		IsDevelopment:      h.config.Environment != "production",
	}).Handler)

	// 认证相关，按 IP 限制请求频率防止暴力破解
	h.Mux.Route("/auth", func(r chi.Router) {
		r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Use(httprate.LimitByIP(5, time.Minute))
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/persons", func(r chi.Router) {
			r.With(h.RequiredRole(domain.RoleOffice)).Post("/", h.CreatePerson)
			r.Get("/", h.GetAllPersons)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.personInfo)
				r.Get("/", h.GetPerson)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(domain.RoleOffice)).Patch("/", h.UpdatePerson)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(domain.RoleOffice)).Delete("/", h.DeletePerson)
				r.With(h.RequiredRole(domain.RoleOffice)).Patch("/password", h.UpdatePersonPassword)
				r.With(h.RequiredRole(domain.RoleOffice)).Get("/basedata", h.GetPersonBasedata)
				r.With(h.RequiredRole(domain.RoleOffice)).Put("/basedata", h.SavePersonBasedata)
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.With(h.RequiredRole(domain.RoleOffice)).Post("/", h.CreateDepartment)
			r.Get("/", h.GetAllDepartments)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.department)
				r.Get("/", h.GetDepartment)
				r.With(h.RequiredRole(domain.RoleOffice)).Patch("/", h.UpdateDepartment)
				r.With(h.RequiredRole(domain.RoleOffice)).Delete("/", h.DeleteDepartment)
			})
		})

		r.Route("/vacation-types", func(r chi.Router) {
			r.Get("/", h.GetAllVacationTypes)
			r.With(h.RequiredRole(domain.RoleOffice)).Post("/", h.CreateVacationType)
			r.With(h.RequiredRole(domain.RoleOffice)).Patch("/{id}", h.UpdateVacationType)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Get("/", h.GetMyApplications)
			r.Post("/", h.ApplyForLeave)
			r.Get("/new", h.GetNewApplicationForm)
			r.With(h.RequiredRole(domain.RoleBoss, domain.RoleDepartmentHead, domain.RoleSecondStageAuthority, domain.RoleOffice)).Get("/waiting", h.GetWaitingApplications)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.leaveApplication)
				r.Get("/", h.GetApplication)
				r.Get("/edit", h.GetEditApplicationForm)
				r.Post("/edit", h.EditApplication)
				r.Post("/allow", h.AllowApplication)
				r.Post("/reject", h.RejectApplication)
				r.Post("/revoke", h.RevokeApplication)
				r.Post("/cancel", h.CancelApplication)
				r.With(h.RequiredRole(domain.RoleOffice)).Post("/decline-cancellation-request", h.DeclineCancellationRequest)
				r.Post("/remind", h.RemindApplication)
			})
		})

		r.Route("/sicknotes", func(r chi.Router) {
			r.With(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteView)).Get("/", h.GetSickNotes)
			r.With(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteAdd)).Post("/", h.CreateSickNote)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.sickNote)
				r.With(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteView)).Get("/", h.GetSickNote)
				r.With(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteEdit)).Patch("/", h.UpdateSickNote)
				r.With(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteCancel)).Post("/cancel", h.CancelSickNote)
			})
		})

		r.Route("/sickdays", func(r chi.Router) {
			r.Use(h.RequiredRole(domain.RoleOffice, domain.RoleSickNoteView))
			r.Get("/", h.GetSickDaysOverview)
			r.Post("/filter", h.FilterSickDays)
			r.Get("/statistics", h.GetSickDaysStatistics)
		})

		r.Get("/absences", h.GetAbsences)

		r.Route("/special-leave", func(r chi.Router) {
			r.Get("/", h.GetSpecialLeaveSettings)
			r.With(h.RequiredRole(domain.RoleOffice)).Put("/", h.UpdateSpecialLeaveSettings)
		})
	})
}
