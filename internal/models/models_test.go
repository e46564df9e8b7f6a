package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRoomConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  RoomConfig
		ok   bool
	}{
		{"asian", RoomConfig{Format: FormatAsianParliamentary}, true},
		{"british", RoomConfig{Format: FormatBritishParliamentary, SpeechDurationSeconds: 420}, true},
		{"duel", RoomConfig{Format: FormatDuel, MaxRounds: 3}, true},
		{"duel without rounds", RoomConfig{Format: FormatDuel}, false},
		{"duel too many rounds", RoomConfig{Format: FormatDuel, MaxRounds: MaxRoundsLimit + 1}, false},
		{"unknown format", RoomConfig{Format: "Lincoln-Douglas"}, false},
		{"negative duration", RoomConfig{Format: FormatAsianParliamentary, SpeechDurationSeconds: -1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestSlotCount(t *testing.T) {
	assert.Equal(t, 3, RoomConfig{Format: FormatAsianParliamentary, MaxRounds: 9}.SlotCount())
	assert.Equal(t, 4, RoomConfig{Format: FormatBritishParliamentary}.SlotCount())
	assert.Equal(t, 5, RoomConfig{Format: FormatDuel, MaxRounds: 5}.SlotCount())
	assert.Equal(t, 1, RoomConfig{Format: FormatDuel, MaxRounds: 5}.SeatsPerSide())
}

func TestRoleTitle(t *testing.T) {
	asian := RoomConfig{Format: FormatAsianParliamentary}
	assert.Equal(t, "Prime Minister", asian.RoleTitle(SidePro, 1))
	assert.Equal(t, "Opposition Whip", asian.RoleTitle(SideContra, 3))
	assert.Empty(t, asian.RoleTitle(SidePro, 4))
	assert.Equal(t, "The Opposition", RoomConfig{Format: FormatDuel}.RoleTitle(SideContra, 1))
}

func TestRoomConfigRoundTrip(t *testing.T) {
	in := RoomConfig{Format: FormatDuel, MaxRounds: 2, SpeechDurationSeconds: 0, IsPublic: true, AllowLateJoin: true}
	v, err := datatypes.NewJSONType(in).Value()
	require.NoError(t, err)

	var out datatypes.JSONType[RoomConfig]
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out.Data())
	assert.True(t, out.Data().Unbounded())
}

func TestPhaseRoundTrip(t *testing.T) {
	deadline := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	phases := []Phase{
		Lobby{},
		Debate{Speaker: Speaker{Side: SideContra, Seat: 2}, Timer: TimerSpeaking, Deadline: &deadline},
		Debate{Speaker: Speaker{Side: SidePro, Seat: 1}, Timer: TimerWaitingInput},
		Finished{},
	}
	for _, p := range phases {
		var r Room
		r.ApplyPhase(p)
		assert.Equal(t, p, r.Phase())
		// 發言者存在若且唯若房間進行中
		assert.Equal(t, r.Status == RoomStatusActive, r.CurrentSpeakerSide != nil)
	}
}

func TestPhaseColumnsClearsSpeaker(t *testing.T) {
	cols := PhaseColumns(Finished{})
	assert.Equal(t, RoomStatusFinished, cols["status"])
	assert.Nil(t, cols["current_speaker_side"])
	assert.Nil(t, cols["turn_deadline"])
	_, hasWinner := cols["winner_side"]
	assert.False(t, hasWinner)
}

func TestPhaseGuardAdmits(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * time.Second)
	past := now.Add(-time.Second)

	var r Room
	r.ApplyPhase(Debate{Speaker: Speaker{Side: SidePro, Seat: 1}, Timer: TimerSpeaking, Deadline: &future})

	pro1 := Speaker{Side: SidePro, Seat: 1}
	contra1 := Speaker{Side: SideContra, Seat: 1}

	assert.True(t, PhaseGuard{Status: RoomStatusActive, Speaker: &pro1}.Admits(&r))
	assert.False(t, PhaseGuard{Status: RoomStatusActive, Speaker: &contra1}.Admits(&r))
	assert.False(t, PhaseGuard{Status: RoomStatusWaiting}.Admits(&r))
	assert.False(t, PhaseGuard{Status: RoomStatusActive, CountdownFreeAt: &now}.Admits(&r))

	r.TurnDeadline = &past
	assert.True(t, PhaseGuard{Status: RoomStatusActive, CountdownFreeAt: &now}.Admits(&r))

	// 不限時的發言中不可再開倒數
	r.ApplyPhase(Debate{Speaker: pro1, Timer: TimerSpeaking})
	assert.False(t, PhaseGuard{Status: RoomStatusActive, CountdownFreeAt: &now}.Admits(&r))

	r.ApplyPhase(Debate{Speaker: pro1, Timer: TimerWaitingInput})
	assert.True(t, PhaseGuard{Status: RoomStatusActive, CountdownFreeAt: &now}.Admits(&r))
}

func TestDebateRemaining(t *testing.T) {
	now := time.Now()
	deadline := now.Add(42 * time.Second)
	left, ok := Debate{Deadline: &deadline}.Remaining(now)
	assert.True(t, ok)
	assert.Equal(t, 42*time.Second, left)

	expired := now.Add(-time.Minute)
	left, ok = Debate{Deadline: &expired}.Remaining(now)
	assert.True(t, ok)
	assert.Zero(t, left)

	_, ok = Debate{}.Remaining(now)
	assert.False(t, ok)
}

func TestFallacyTypeValid(t *testing.T) {
	assert.True(t, FallacyStrawman.Valid())
	assert.Equal(t, "Appeal to Emotion", FallacyAppealToEmotion.Label())
	assert.False(t, FallacyType("tu_quoque").Valid())
}
