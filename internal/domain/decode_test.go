package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

func TestDecodeStrictAcceptsWellFormedVendor(t *testing.T) {
	var vendor CateringVendor
	err := DecodeStrict([]byte(`{"id":"c1","taxId":"123","name":"Bar"}`), &vendor)
	require.NoError(t, err)
	assert.Equal(t, "c1", vendor.ID)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	var vendor CateringVendor
	err := DecodeStrict([]byte(`{"id":"c1","taxId":"123","name":"Bar","extra":1}`), &vendor)
	require.Error(t, err)

	var decodeErr *util.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeStrictRejectsMissingRequiredFields(t *testing.T) {
	var vendor CateringVendor
	err := DecodeStrict([]byte(`{"id":"c1","taxId":"","name":"Bar"}`), &vendor)
	require.Error(t, err)

	var decodeErr *util.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeStrictRejectsUnknownRole(t *testing.T) {
	var member TeamMember
	err := DecodeStrict([]byte(`{"id":"m1","name":"Adam","role":"MANAGER","teamId":null}`), &member)
	require.Error(t, err)
}

func TestDecodeStrictRejectsTrailingData(t *testing.T) {
	var vendor CateringVendor
	err := DecodeStrict([]byte(`{"id":"c1","taxId":"1","name":"A"}{"id":"c2"}`), &vendor)
	require.Error(t, err)
}

func TestDecodeStrictValidatesSliceElements(t *testing.T) {
	var vendors CateringVendors
	err := DecodeStrict([]byte(`[{"id":"c1","taxId":"1","name":"A"},{"id":"","taxId":"2","name":"B"}]`), &vendors)
	require.Error(t, err, "an invalid element poisons the whole payload")
}

func TestTeamValidateToleratesPlaceholderName(t *testing.T) {
	team := Team{ID: "t1", Name: "", Members: []TeamMember{{ID: "m1", Name: "Adam", Role: MemberRoleWorker}}}
	assert.NoError(t, team.Validate())
}
