package widget

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"reviewsection/pkg/logger"
	"reviewsection/review-section/internal/app/section/infrastructure"
)

const UnknownUserName = "Unknown"

type Avatar struct {
	Name     string
	Initials string
}

// UserAvatar запоминает успешно разрешенные имена, ошибки не кешируются
type UserAvatar struct {
	users infrastructure.UserDirectory

	mu       sync.Mutex
	resolved map[string]Avatar
}

func NewUserAvatar(users infrastructure.UserDirectory) *UserAvatar {
	return &UserAvatar{users: users, resolved: make(map[string]Avatar)}
}

// Resolve никогда не возвращает ошибку: неизвестный пользователь отображается как Unknown
func (a *UserAvatar) Resolve(ctx context.Context, userID string) Avatar {
	if userID == "" {
		return unknownAvatar()
	}

	a.mu.Lock()
	avatar, ok := a.resolved[userID]
	a.mu.Unlock()
	if ok {
		return avatar
	}

	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		logger.Debug().Err(err).Str("user_id", userID).Msg("Failed to resolve user name")
		return unknownAvatar()
	}

	avatar = unknownAvatar()
	if user != nil && strings.TrimSpace(user.Name) != "" {
		name := strings.TrimSpace(user.Name)
		avatar = Avatar{Name: name, Initials: Initials(name)}
	}

	a.mu.Lock()
	a.resolved[userID] = avatar
	a.mu.Unlock()

	return avatar
}

func unknownAvatar() Avatar {
	return Avatar{Name: UnknownUserName, Initials: Initials(UnknownUserName)}
}

// Initials - первые буквы слов имени в верхнем регистре
func Initials(name string) string {
	if name == UnknownUserName {
		return "UN"
	}

	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
