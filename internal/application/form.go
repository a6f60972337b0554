package application

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

const (
	maxTextLength = 200
	timeLayout    = "15:04"
)

// Form 是请假申请表单，提交失败时原样放回 flash 中回填
type Form struct {
	ID                  int64                        `form:"id" json:"id"`
	Person              *domain.Person               `form:"person" json:"person" validate:"required"`
	StartDate           *time.Time                   `form:"startDate" json:"startDate" validate:"required"`
	StartTime           string                       `form:"startTime" json:"startTime" validate:"omitempty,datetime=15:04"`
	EndDate             *time.Time                   `form:"endDate" json:"endDate" validate:"required"`
	EndTime             string                       `form:"endTime" json:"endTime" validate:"omitempty,datetime=15:04"`
	VacationType        *domain.VacationType         `form:"vacationType" json:"vacationType" validate:"required"`
	DayLength           domain.DayLength             `form:"dayLength" json:"dayLength" validate:"required,oneof=FULL MORNING NOON"`
	Hours               decimal.NullDecimal          `form:"hours" json:"hours"`
	Reason              string                       `form:"reason" json:"reason" validate:"max=200"`
	Address             string                       `form:"address" json:"address" validate:"max=200"`
	TeamInformed        bool                         `form:"teamInformed" json:"teamInformed"`
	HolidayReplacements []*domain.HolidayReplacement `form:"holidayReplacements" json:"holidayReplacements"`
}

func (f *Form) HolidayReplacementPersons() []*domain.Person {
	persons := make([]*domain.Person, 0, len(f.HolidayReplacements))
	for _, replacement := range f.HolidayReplacements {
		persons = append(persons, replacement.Person)
	}
	return persons
}

// FieldErrors 表单字段名 -> 错误信息
type FieldErrors map[string]string

func (e FieldErrors) Add(field, msg string) {
	// 同一字段只保留第一条错误
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// ParseForm 解析表单参数，人员和假期类型只填充 ID，需要再调用 Resolve
func ParseForm(values url.Values) (*Form, FieldErrors) {
	errs := FieldErrors{}
	form := &Form{
		StartTime:           strings.TrimSpace(values.Get("startTime")),
		EndTime:             strings.TrimSpace(values.Get("endTime")),
		DayLength:           domain.DayLength(strings.TrimSpace(values.Get("dayLength"))),
		Reason:              strings.TrimSpace(values.Get("reason")),
		Address:             strings.TrimSpace(values.Get("address")),
		HolidayReplacements: make([]*domain.HolidayReplacement, 0),
	}

	if raw := values.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("id", "申请ID无效")
		}
		form.ID = id
	}

	if raw := values.Get("personId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("person", "人员ID无效")
		} else {
			form.Person = &domain.Person{ID: id}
		}
	}

	if raw := values.Get("vacationTypeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("vacationType", "假期类型无效")
		} else {
			form.VacationType = &domain.VacationType{ID: id}
		}
	}

	if raw := strings.TrimSpace(values.Get("startDate")); raw != "" {
		date, ok := domain.ParseDate(raw)
		if !ok {
			errs.Add("startDate", "开始日期格式错误")
		} else {
			form.StartDate = &date
		}
	}

	if raw := strings.TrimSpace(values.Get("endDate")); raw != "" {
		date, ok := domain.ParseDate(raw)
		if !ok {
			errs.Add("endDate", "结束日期格式错误")
		} else {
			form.EndDate = &date
		}
	}

	if raw := strings.TrimSpace(values.Get("hours")); raw != "" {
		hours, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			errs.Add("hours", "小时数格式错误")
		} else {
			form.Hours = decimal.NewNullDecimal(hours)
		}
	}

	switch strings.ToLower(values.Get("teamInformed")) {
	case "true", "on", "1":
		form.TeamInformed = true
	}

	// 代班人的 ID 和备注按下标一一对应
	notes := values["holidayReplacementNote"]
	for i, raw := range values["holidayReplacementPersonId"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("holidayReplacements", "代班人ID无效")
			continue
		}
		replacement := &domain.HolidayReplacement{Person: &domain.Person{ID: id}}
		if i < len(notes) {
			replacement.Note = strings.TrimSpace(notes[i])
		}
		form.HolidayReplacements = append(form.HolidayReplacements, replacement)
	}

	return form, errs
}

type FormResolver interface {
	GetVacationTypeByID(id int64) (*domain.VacationType, error)
	GetPersonsByIDs(ids []int64) ([]*domain.Person, error)
}

// Resolve 用完整的人员和假期类型替换 ParseForm 中只有 ID 的占位对象，不存在的记为字段错误
func Resolve(form *Form, resolver FormResolver, errs FieldErrors) error {
	if form.VacationType != nil {
		vacationType, err := resolver.GetVacationTypeByID(form.VacationType.ID)
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			errs.Add("vacationType", "假期类型不存在")
			form.VacationType = nil
		} else {
			form.VacationType = vacationType
		}
	}

	ids := make([]int64, 0, len(form.HolidayReplacements)+1)
	if form.Person != nil {
		ids = append(ids, form.Person.ID)
	}
	for _, replacement := range form.HolidayReplacements {
		ids = append(ids, replacement.Person.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	persons, err := resolver.GetPersonsByIDs(ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]*domain.Person, len(persons))
	for _, person := range persons {
		byID[person.ID] = person
	}

	if form.Person != nil {
		if person, ok := byID[form.Person.ID]; ok {
			form.Person = person
		} else {
			errs.Add("person", "人员不存在")
			form.Person = nil
		}
	}

	replacements := make([]*domain.HolidayReplacement, 0, len(form.HolidayReplacements))
	for _, replacement := range form.HolidayReplacements {
		person, ok := byID[replacement.Person.ID]
		if !ok {
			errs.Add("holidayReplacements", "代班人不存在")
			continue
		}
		replacements = append(replacements, &domain.HolidayReplacement{Person: person, Note: replacement.Note})
	}
	form.HolidayReplacements = replacements

	return nil
}

type FormValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewFormValidator() (*FormValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息中使用表单字段名
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &FormValidator{
		validate:   validate,
		translator: trans,
	}, nil
}

// Validate 收集所有字段错误，errs 中已有的解析错误会被保留
func (v *FormValidator) Validate(form *Form, errs FieldErrors) FieldErrors {
	if errs == nil {
		errs = FieldErrors{}
	}

	if err := v.validate.Struct(form); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			errs.Add("form", err.Error())
			return errs
		}
		for _, fe := range validationErrors {
			errs.Add(fe.Field(), fe.Translate(v.translator))
		}
	}

	validatePeriod(form, errs)
	validateTime(form, errs)
	validateVacationType(form, errs)

	for _, replacement := range form.HolidayReplacements {
		if len([]rune(replacement.Note)) > maxTextLength {
			errs.Add("holidayReplacements", "代班备注不能超过200个字符")
		}
	}

	return errs
}

func validatePeriod(form *Form, errs FieldErrors) {
	if form.StartDate == nil || form.EndDate == nil {
		return
	}

	if form.StartDate.After(*form.EndDate) {
		errs.Add("endDate", "结束日期不能早于开始日期")
		return
	}

	// 半天假只能是同一天
	if form.DayLength.IsHalfDay() && !form.StartDate.Equal(*form.EndDate) {
		errs.Add("dayLength", "半天假的开始日期和结束日期必须相同")
	}
}

func validateTime(form *Form, errs FieldErrors) {
	if form.StartTime == "" && form.EndTime == "" {
		return
	}

	if form.StartTime == "" || form.EndTime == "" {
		errs.Add("startTime", "开始时间和结束时间必须同时填写")
		return
	}

	startTime, err := time.Parse(timeLayout, form.StartTime)
	if err != nil {
		return
	}
	endTime, err := time.Parse(timeLayout, form.EndTime)
	if err != nil {
		return
	}

	if form.StartDate != nil && form.EndDate != nil && form.StartDate.Equal(*form.EndDate) && !endTime.After(startTime) {
		errs.Add("endTime", "结束时间必须晚于开始时间")
	}
}

func validateVacationType(form *Form, errs FieldErrors) {
	if form.VacationType == nil {
		return
	}

	if form.VacationType.IsOvertime() {
		if !form.Hours.Valid {
			errs.Add("hours", "加班调休必须填写小时数")
		} else if !form.Hours.Decimal.IsPositive() {
			errs.Add("hours", "小时数必须大于0")
		}
	}

	if form.VacationType.RequiresReason() && form.Reason == "" {
		errs.Add("reason", "该假期类型必须填写原因")
	}
}
