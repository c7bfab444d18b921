package models

import (
	"time"

	"github.com/google/uuid"
)

// User - студент из реестра. FaceDescriptor == nil, пока лицо не зарегистрировано.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	FaceDescriptor []float32  `json:"-"`
	FaceEnrolledAt *time.Time `json:"face_enrolled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (u *User) FaceEnrolled() bool {
	return len(u.FaceDescriptor) > 0
}
