package domain

const (
	MailTypeCreateUser                       = "create_user"
	MailTypeResetPassword                    = "reset_password"
	MailTypeChangeEmail                      = "change_email"
	MailTypeApplicationApplied               = "application_applied"
	MailTypeApplicationAppliedManagement     = "application_applied_management"
	MailTypeApplicationTemporaryAllowed      = "application_temporary_allowed"
	MailTypeApplicationAllowed               = "application_allowed"
	MailTypeApplicationRejected              = "application_rejected"
	MailTypeApplicationRevoked               = "application_revoked"
	MailTypeApplicationCancelled             = "application_cancelled"
	MailTypeApplicationCancellationRequested = "application_cancellation_requested"
	MailTypeApplicationCancellationDeclined  = "application_cancellation_declined"
	MailTypeWaitingApplicationReminder       = "waiting_application_reminder"
	MailTypeUpcomingApplicationReminder      = "upcoming_application_reminder"
	MailTypeUpcomingHolidayReplacement       = "upcoming_holiday_replacement"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ApplicationMailData struct {
	RecipientName string `json:"recipientName"`
	PersonName    string `json:"personName"`
	ApplicationID int64  `json:"applicationId"`
	VacationType  string `json:"vacationType"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	DayLength     string `json:"dayLength"`
	Status        string `json:"status"`
	Days          int    `json:"days"`
}

type HolidayReplacementMailData struct {
	RecipientName string `json:"recipientName"`
	PersonName    string `json:"personName"`
	ApplicationID int64  `json:"applicationId"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Note          string `json:"note"`
}

func NewApplicationMailData(recipient *Person, application *Application) ApplicationMailData {
	data := ApplicationMailData{
		RecipientName: recipient.NiceName(),
		ApplicationID: application.ID,
		StartDate:     application.StartDate.Format(ISODateLayout),
		EndDate:       application.EndDate.Format(ISODateLayout),
		DayLength:     string(application.DayLength),
		Status:        string(application.Status),
		Days:          WorkDays(application.StartDate, application.EndDate),
	}
	if application.Person != nil {
		data.PersonName = application.Person.NiceName()
	}
	if application.VacationType != nil {
		data.VacationType = application.VacationType.MessageKey
	}
	return data
}
