package permissions

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestResolve_FixedRequirements(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		want int64
	}{
		{"administrator", Administrator(), int64(discordgo.PermissionAdministrator)},
		{"owner", OwnerOnly(), 0},
		{"disabled", Disabled(), 0},
		{"raw bits", Bits(int64(discordgo.PermissionManageMessages)), int64(discordgo.PermissionManageMessages)},
		{"zero bits", Bits(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				got := Resolve(tt.req)
				if got == nil {
					t.Fatal("expected non-nil bitmask")
				}
				if *got != tt.want {
					t.Errorf("expected %d, got %d", tt.want, *got)
				}
			}
		})
	}
}

func TestResolve_UnrestrictedIsNil(t *testing.T) {
	if got := Resolve(Unrestricted()); got != nil {
		t.Errorf("expected nil for unrestricted, got %d", *got)
	}

	var zero Requirement
	if got := Resolve(zero); got != nil {
		t.Errorf("expected nil for zero value, got %d", *got)
	}
}

func TestResolve_FlagsCombineBits(t *testing.T) {
	got := Resolve(Flags("BAN_MEMBERS", "kick members", "manage-messages"))
	if got == nil {
		t.Fatal("expected non-nil bitmask")
	}

	want := int64(discordgo.PermissionBanMembers | discordgo.PermissionKickMembers | discordgo.PermissionManageMessages)
	if *got != want {
		t.Errorf("expected %d, got %d", want, *got)
	}
}

func TestResolve_UnknownFlagsAreIgnored(t *testing.T) {
	got := Resolve(Flags("NOT_A_PERMISSION", "BAN_MEMBERS"))
	if got == nil {
		t.Fatal("expected non-nil bitmask")
	}
	if *got != int64(discordgo.PermissionBanMembers) {
		t.Errorf("expected only BAN_MEMBERS, got %d", *got)
	}

	empty := Resolve(Flags())
	if empty == nil || *empty != 0 {
		t.Errorf("expected 0 for empty flag list, got %v", empty)
	}
}

func TestResolve_ReturnsFreshPointer(t *testing.T) {
	first := Resolve(Administrator())
	*first = 0

	second := Resolve(Administrator())
	if *second != int64(discordgo.PermissionAdministrator) {
		t.Error("mutating a resolved bitmask must not leak into later results")
	}
}

func TestFlags_CopiesInput(t *testing.T) {
	names := []string{"BAN_MEMBERS"}
	req := Flags(names...)
	names[0] = "ADMINISTRATOR"

	if got := Resolve(req); *got != int64(discordgo.PermissionBanMembers) {
		t.Errorf("requirement changed after caller mutated input: %d", *got)
	}
}

func TestParseFlag(t *testing.T) {
	if _, ok := ParseFlag("manage_guild"); !ok {
		t.Error("expected manage_guild to parse")
	}
	if _, ok := ParseFlag("FLY"); ok {
		t.Error("expected unknown flag to be rejected")
	}
}

func TestRequirement_String(t *testing.T) {
	tests := []struct {
		req  Requirement
		want string
	}{
		{Unrestricted(), "unrestricted"},
		{Administrator(), "administrator"},
		{OwnerOnly(), "owner"},
		{Disabled(), "disabled"},
		{Bits(8), "bits(8)"},
		{Flags("BAN_MEMBERS", "KICK_MEMBERS"), "flags(BAN_MEMBERS|KICK_MEMBERS)"},
	}

	for _, tt := range tests {
		if got := tt.req.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
