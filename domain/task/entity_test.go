package task

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusTodo.IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusDone.IsValid())
	assert.False(t, Status("archived").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(uuid.New().String()))
	assert.False(t, ValidID("not-an-id"))
	assert.False(t, ValidID(""))
}

func TestPatch_FieldsAndColumns(t *testing.T) {
	title := "new"
	assignee := "bob"
	p := Patch{Title: &title, AssigneeID: &assignee}

	assert.Equal(t, []string{"title", "assignee_id"}, p.Fields())
	assert.Equal(t, map[string]any{"title": "new", "assignee_id": "bob"}, p.Columns())
	assert.Empty(t, Patch{}.Fields())
	assert.Empty(t, Patch{}.Columns())
}

func TestValidateNew(t *testing.T) {
	tests := []struct {
		name    string
		in      NewTask
		wantErr string
	}{
		{name: "valid", in: NewTask{Title: "t", Description: "d"}},
		{name: "missing title", in: NewTask{Description: "d"}, wantErr: "Title of task is required"},
		{name: "blank title", in: NewTask{Title: "  ", Description: "d"}, wantErr: "Title of task is required"},
		{name: "missing description", in: NewTask{Title: "t"}, wantErr: "Description of task is required"},
		{name: "bad status", in: NewTask{Title: "t", Description: "d", Status: "archived"}, wantErr: invalidStatusMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNew(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.wantErr, Message(err))
		})
	}
}

func TestValidatePatch_AllowsEmptyTitle(t *testing.T) {
	empty := ""
	assert.NoError(t, ValidatePatch(Patch{Title: &empty, Description: &empty}))

	bad := Status("archived")
	assert.ErrorIs(t, ValidatePatch(Patch{Status: &bad}), ErrValidation)
}

func TestError_CodeRoundTrip(t *testing.T) {
	for _, kind := range []error{ErrInvalidID, ErrValidation, ErrForbidden, ErrNotFound, ErrStoreUnavailable} {
		err := NewError(kind, "message")
		rebuilt := FromCode(Code(err), Message(err))

		assert.ErrorIs(t, rebuilt, kind)
		assert.Equal(t, "message", rebuilt.Message)
	}

	assert.Equal(t, "", Code(errors.New("plain")))
	assert.ErrorIs(t, FromCode("bogus", "x"), ErrStoreUnavailable)
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("insert: %w", &Error{Kind: ErrStoreUnavailable, Message: "Internal Server Error", Err: cause})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", Message(err))
}
