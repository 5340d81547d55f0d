package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateExceptionDate(t *testing.T) {
	testCases := []struct {
		date  string
		valid bool
	}{
		{"12/25", true},
		{"01/01", true},
		{"02/29", true},
		{"02/30", false},
		{"04/31", false},
		{"13/01", false},
		{"00/10", false},
		{"1/5", false},
		{"12-25", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.date, func(t *testing.T) {
			err := ValidateExceptionDate(tc.date)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, IsValidationError(err))
			}
		})
	}
}

func TestExceptionDateMatchesDay(t *testing.T) {
	e := &ExceptionDate{Date: "07/04"}
	assert.True(t, e.MatchesDay(time.Date(2027, time.July, 4, 15, 0, 0, 0, time.UTC)))
	assert.False(t, e.MatchesDay(time.Date(2027, time.July, 5, 15, 0, 0, 0, time.UTC)))
}

func TestParseBulletField(t *testing.T) {
	field, err := ParseBulletField("extra_costs")
	assert.NoError(t, err)
	assert.Equal(t, BulletFieldExtraCosts, field)

	_, err = ParseBulletField("notes")
	assert.True(t, IsValidationError(err))
}

func TestOrgContentBulletAccessors(t *testing.T) {
	content := NewOrgContent("org-1")
	content.SetBullet(BulletFieldAuctionTriggers, "* 30 days unclaimed")

	assert.Equal(t, "* 30 days unclaimed", content.Bullet(BulletFieldAuctionTriggers))
	assert.Equal(t, "", content.Bullet(BulletFieldDocumentsNeeded))
	assert.Nil(t, content.DefaultHoursOfOperation)
}

func TestTowRequestTransitions(t *testing.T) {
	req := NewTowRequest("org-1")
	assert.Equal(t, TowRequestStatusPending, req.Status)
	assert.NotEmpty(t, req.ID)

	assert.True(t, req.CanTransitionTo(TowRequestStatusDispatched))
	assert.False(t, req.CanTransitionTo(TowRequestStatusCompleted))

	req.Status = TowRequestStatusCompleted
	assert.False(t, req.CanTransitionTo(TowRequestStatusCancelled))
	assert.False(t, TowRequestStatus("lost").IsValid())
}

func TestTowRequestValidate(t *testing.T) {
	req := NewTowRequest("org-1")
	err := req.Validate()
	var errs ValidationErrors
	assert.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)

	req.PlateNumber = "7ABC123"
	req.PickupAddress = "12 Main St"
	assert.NoError(t, req.Validate())
}

func TestUserValidate(t *testing.T) {
	assert.Error(t, (&User{ID: "u1"}).Validate())
	assert.NoError(t, (&User{ID: "u1", OrgID: "org-1"}).Validate())
}
