// internal/domain/user/entity_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ivan Petrov", (&User{FirstName: "Ivan", LastName: "Petrov", Username: "ivan"}).FullName())
	assert.Equal(t, "Ivan", (&User{FirstName: "Ivan", Username: "ivan"}).FullName())
	assert.Equal(t, "Petrov", (&User{LastName: "Petrov", Username: "ivan"}).FullName())
	assert.Equal(t, "ivan", (&User{Username: "ivan"}).FullName())
}

func TestCanAccessAdmin(t *testing.T) {
	assert.True(t, (&User{IsActive: true, IsStaff: true}).CanAccessAdmin())
	assert.True(t, (&User{IsActive: true, IsSuperuser: true}).CanAccessAdmin())
	assert.False(t, (&User{IsActive: false, IsStaff: true}).CanAccessAdmin())
	assert.False(t, (&User{IsActive: true}).CanAccessAdmin())
}
