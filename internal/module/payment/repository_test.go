package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMethodWriteError(t *testing.T) {
	tests := []struct {
		name      string
		isDefault bool
		err       error
		conflict  bool
	}{
		{"default lost the race", true, gorm.ErrDuplicatedKey, true},
		{"non-default duplicate", false, gorm.ErrDuplicatedKey, false},
		{"other failure", true, errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := methodWriteError("create payment method", &PaymentMethod{IsDefault: tt.isDefault}, tt.err)

			assert.Equal(t, tt.conflict, errors.Is(err, ErrDefaultMethodConflict))
			if !tt.conflict {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
