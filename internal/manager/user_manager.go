package manager

import (
	"maps"

	"taskboard/internal/models"
)

// UserManager хранит пользователей в порядке добавления.
// Как и TaskManager, не синхронизирован сам по себе.
type UserManager struct {
	users []models.User
	newID IDFunc
}

func NewUserManager(newID IDFunc) *UserManager {
	return &UserManager{newID: newID}
}

func (um *UserManager) AddUser(draft models.UserDraft) models.User {
	id := NewID
	if um.newID != nil {
		id = um.newID
	}

	user := models.User{
		ID:         id(),
		Name:       draft.Name,
		Attributes: maps.Clone(draft.Attributes),
	}
	um.users = append(um.users, user)
	return user.Clone()
}

// RemoveUser удаляет пользователя из списка. Задачи, назначенные на него,
// чистит Workspace.RemoveUser - здесь этого не делаем.
func (um *UserManager) RemoveUser(id string) bool {
	for i := range um.users {
		if um.users[i].ID == id {
			um.users = append(um.users[:i], um.users[i+1:]...)
			return true
		}
	}
	return false
}

func (um *UserManager) GetUser(id string) (models.User, bool) {
	for _, user := range um.users {
		if user.ID == id {
			return user.Clone(), true
		}
	}
	return models.User{}, false
}

func (um *UserManager) AllUsers() []models.User {
	users := make([]models.User, 0, len(um.users))
	for _, user := range um.users {
		users = append(users, user.Clone())
	}
	return users
}
