package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseShipmentStatus(t *testing.T) {
	cases := map[string]ShipmentStatus{
		"Created":     ShipmentStatusCreated,
		"in transit":  ShipmentStatusInTransit,
		"IN_TRANSIT":  ShipmentStatusInTransit,
		"picked-up":   ShipmentStatusPickedUp,
		" Delivered ": ShipmentStatusDelivered,
	}
	for in, want := range cases {
		got, ok := ParseShipmentStatus(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	got, ok := ParseShipmentStatus("Lost at sea")
	require.False(t, ok)
	require.Equal(t, ShipmentStatus("Lost at sea"), got)
	require.False(t, got.Known())
}

func TestParseRoleAndProvider(t *testing.T) {
	r, ok := ParseRole("admin")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("ROOT")
	require.False(t, ok)

	p, ok := ParseProvider("local")
	require.True(t, ok)
	require.Equal(t, ProviderLocal, p)
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2025-03-09"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, d, back)

	require.Error(t, json.Unmarshal([]byte(`"09/03/2025"`), &back))
}

func TestShipmentDisplayID(t *testing.T) {
	require.Equal(t, "SH007", ShipmentDisplayID(7))
	require.Equal(t, "SH1234", ShipmentDisplayID(1234))
}

func TestUser_IsAdmin(t *testing.T) {
	require.True(t, (&User{Role: RoleAdmin, IsActive: true}).IsAdmin())
	require.False(t, (&User{Role: RoleAdmin, IsActive: false}).IsAdmin())
	require.False(t, (&User{Role: RoleOperator, IsActive: true}).IsAdmin())
	var u *User
	require.False(t, u.IsAdmin())
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	h := "secret-hash"
	b, err := json.Marshal(User{Email: "a@x.com", PasswordHash: &h})
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret-hash")
}
