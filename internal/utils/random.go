package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

// GenerateRandomChineseName 返回名和姓
func GenerateRandomChineseName() (string, string) {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return name, surname
}

// 除 USER 外随机附加的权限
var extraPermissions = []domain.Role{
	domain.RoleDepartmentHead,
	domain.RoleSecondStageAuthority,
	domain.RoleOffice,
	domain.RoleSickNoteView,
}

func GenerateRandomPermissions() []domain.Role {
	permissions := []domain.Role{domain.RoleUser}
	// 大部分人员只有 USER 权限
	if rand.Intn(4) == 0 {
		permissions = append(permissions, extraPermissions[rand.Intn(len(extraPermissions))])
	}
	return permissions
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomPerson(password string, emailDomainName string) (*domain.Person, error) {
	firstName, lastName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(lastName + firstName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	person := &domain.Person{
		Username:     username,
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        username + "@" + emailDomainName,
		Permissions:  GenerateRandomPermissions(),
	}

	return person, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// randomPeriod 在 today 前后 60 天内随机生成一段不超过 10 天的时间
func randomPeriod(today time.Time) (time.Time, time.Time, domain.DayLength) {
	start := domain.Date(today).AddDate(0, 0, rand.Intn(120)-60)

	dayLengths := []domain.DayLength{domain.DayLengthFull, domain.DayLengthMorning, domain.DayLengthNoon}
	dayLength := dayLengths[rand.Intn(len(dayLengths))]
	if dayLength.IsHalfDay() {
		return start, start, dayLength
	}

	return start, start.AddDate(0, 0, rand.Intn(10)), dayLength
}

func GenerateRandomApplication(person *domain.Person, vacationType *domain.VacationType, today time.Time) *domain.Application {
	start, end, dayLength := randomPeriod(today)

	application := &domain.Application{
		Person:              person,
		Applier:             person,
		StartDate:           start,
		EndDate:             end,
		DayLength:           dayLength,
		VacationType:        vacationType,
		Reason:              "请假原因" + GenerateRandomID(5, 3),
		TeamInformed:        rand.Intn(2) == 0,
		HolidayReplacements: make([]*domain.HolidayReplacement, 0),
		Status:              domain.ApplicationStatusWaiting,
		ApplicationDate:     domain.Date(today).AddDate(0, 0, -rand.Intn(7)-1),
	}

	return application
}

func GenerateRandomSickNote(person *domain.Person, today time.Time) *domain.SickNote {
	start, end, dayLength := randomPeriod(today)

	categories := []domain.SickNoteCategory{domain.SickNoteCategorySickNote, domain.SickNoteCategorySickNoteChild}
	sickNote := &domain.SickNote{
		Person:    person,
		Applier:   person,
		Category:  categories[rand.Intn(len(categories))],
		StartDate: start,
		EndDate:   end,
		DayLength: dayLength,
		Status:    domain.SickNoteStatusActive,
	}

	// 一半的病假带有覆盖整个病假的医生证明
	if rand.Intn(2) == 0 {
		aubStart, aubEnd := start, end
		sickNote.AubStartDate = &aubStart
		sickNote.AubEndDate = &aubEnd
	}

	return sickNote
}
