package app

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/SwarupVishwas18/char-chitti/internal/domain"
)

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), nil)
}

func newTestRoom() *domain.Room {
	return domain.NewRoom(domain.Settings{
		RoomName:    "Test Room",
		MaxPlayers:  4,
		EntityNames: []string{"Lion", "Tiger"},
		PassMode:    domain.PassModeManual,
	})
}

func mustJoin(t *testing.T, svc *Service, room *domain.Room, id, name string) {
	t.Helper()
	if _, err := svc.Join(room, id, name); err != nil {
		t.Fatalf("join %s: %v", id, err)
	}
}

func mustStart(t *testing.T, svc *Service, room *domain.Room, actor string) {
	t.Helper()
	if _, err := svc.StartGame(room, actor); err != nil {
		t.Fatalf("start game: %v", err)
	}
}

func totalChits(room *domain.Room) int {
	total := 0
	for _, p := range room.Players {
		total += len(p.Hand)
	}
	return total
}

func entityCounts(room *domain.Room) map[string]int {
	counts := make(map[string]int)
	for _, p := range room.Players {
		for _, chit := range p.Hand {
			counts[chit]++
		}
	}
	return counts
}

func TestJoinFirstPlayerBecomesOwner(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()

	mustJoin(t, svc, room, "a", "Alice")
	mustJoin(t, svc, room, "b", "Bob")

	if room.OwnerID != "a" {
		t.Fatalf("owner = %s, want a", room.OwnerID)
	}
	if !room.Players["a"].IsOwner || room.Players["b"].IsOwner {
		t.Fatalf("owner flags wrong: a=%t b=%t", room.Players["a"].IsOwner, room.Players["b"].IsOwner)
	}
}

func TestJoinNameCleaning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Trimmed", "  Alice  ", "Alice"},
		{"EmptyDefaults", "   ", "Player"},
		{"Truncated", "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := newTestService(1)
			room := newTestRoom()
			mustJoin(t, svc, room, "a", test.input)
			if got := room.Players["a"].Name; got != test.expected {
				t.Fatalf("name = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestJoinRejectedWhenFull(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	room.Settings.MaxPlayers = 2

	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	if _, err := svc.Join(room, "c", "C"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("join err = %v, want ErrRoomFull", err)
	}
	if len(room.Players) != 2 {
		t.Fatalf("roster size = %d, want 2", len(room.Players))
	}
}

func TestJoinRejectedMidGame(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	if _, err := svc.Join(room, "c", "C"); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("join err = %v, want ErrGameInProgress", err)
	}
}

func TestDisconnectInLobbyDeletesRecord(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	svc.Disconnect(room, "b")
	if _, ok := room.Players["b"]; ok {
		t.Fatalf("lobby disconnect should delete the record")
	}
}

func TestDisconnectMidGameRetainsRecord(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	svc.Disconnect(room, "b")
	p, ok := room.Players["b"]
	if !ok {
		t.Fatalf("mid-game disconnect must retain the record")
	}
	if p.IsConnected {
		t.Fatalf("retained record should be marked disconnected")
	}
	if len(p.Hand) != 4 {
		t.Fatalf("retained hand = %d chits, want 4", len(p.Hand))
	}
}

func TestOwnerTransferOnDisconnect(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustJoin(t, svc, room, "c", "C")

	svc.Disconnect(room, "a")

	if room.OwnerID != "b" {
		t.Fatalf("owner = %s, want b (first connected in join order)", room.OwnerID)
	}
	if !room.Players["b"].IsOwner {
		t.Fatalf("new owner flag not set")
	}

	owners := 0
	for _, p := range room.Players {
		if p.IsOwner {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("owners = %d, want exactly 1", owners)
	}
}

func TestOwnerStaleWhenNobodyLeftThenReassignedOnJoin(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")

	svc.Disconnect(room, "a")
	if room.OwnerID != "a" {
		t.Fatalf("owner = %s, want stale a", room.OwnerID)
	}

	mustJoin(t, svc, room, "b", "B")
	if room.OwnerID != "b" {
		t.Fatalf("owner = %s, want b after joining empty room", room.OwnerID)
	}
}

func TestUpdateSettingsAuthorization(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	before := room.Settings
	patch := SettingsPatch{EntityNames: []string{"Cat", "Dog", "Fox"}}
	if _, err := svc.UpdateSettings(room, "b", patch); !errors.Is(err, ErrSettingsNotOwner) {
		t.Fatalf("err = %v, want ErrSettingsNotOwner", err)
	}
	if !reflect.DeepEqual(room.Settings, before) {
		t.Fatalf("settings mutated by rejected call: %+v", room.Settings)
	}
}

func TestUpdateSettingsLockedMidGame(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	if _, err := svc.UpdateSettings(room, "a", SettingsPatch{}); !errors.Is(err, ErrSettingsLocked) {
		t.Fatalf("err = %v, want ErrSettingsLocked", err)
	}
}

func TestUpdateSettingsEntityValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr error
	}{
		{
			name:  "TrimsAndDropsEmpties",
			input: []string{" Cat ", "", "  ", "Dog"},
			want:  []string{"Cat", "Dog"},
		},
		{
			name:  "Dedupes",
			input: []string{"Cat", "Cat", "Dog", " Cat"},
			want:  []string{"Cat", "Dog"},
		},
		{
			name:  "CapsAtTen",
			input: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
			want:  []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		},
		{
			name:    "RejectsFewerThanTwo",
			input:   []string{"  ", "Cat", "Cat"},
			wantErr: ErrTooFewEntities,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := newTestService(1)
			room := newTestRoom()
			mustJoin(t, svc, room, "a", "A")

			before := append([]string{}, room.Settings.EntityNames...)
			_, err := svc.UpdateSettings(room, "a", SettingsPatch{EntityNames: test.input})

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("err = %v, want %v", err, test.wantErr)
				}
				if !reflect.DeepEqual(room.Settings.EntityNames, before) {
					t.Fatalf("entity names mutated by rejected call")
				}
				return
			}
			if err != nil {
				t.Fatalf("update settings: %v", err)
			}
			if !reflect.DeepEqual(room.Settings.EntityNames, test.want) {
				t.Fatalf("entity names = %v, want %v", room.Settings.EntityNames, test.want)
			}
		})
	}
}

func TestUpdateSettingsClampsMaxPlayers(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{1, 2},
		{0, 2},
		{5, 5},
		{9, 8},
	}

	for _, test := range tests {
		svc := newTestService(1)
		room := newTestRoom()
		mustJoin(t, svc, room, "a", "A")

		if _, err := svc.UpdateSettings(room, "a", SettingsPatch{MaxPlayers: &test.input}); err != nil {
			t.Fatalf("update settings(%d): %v", test.input, err)
		}
		if room.Settings.MaxPlayers != test.want {
			t.Fatalf("maxPlayers(%d) = %d, want %d", test.input, room.Settings.MaxPlayers, test.want)
		}
	}
}

func TestUpdateSettingsRejectsUnknownPassMode(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")

	bad := "instant"
	if _, err := svc.UpdateSettings(room, "a", SettingsPatch{PassMode: &bad}); !errors.Is(err, ErrInvalidPassMode) {
		t.Fatalf("err = %v, want ErrInvalidPassMode", err)
	}

	auto := "auto"
	if _, err := svc.UpdateSettings(room, "a", SettingsPatch{PassMode: &auto}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if room.Settings.PassMode != domain.PassModeAuto {
		t.Fatalf("passMode = %s, want auto", room.Settings.PassMode)
	}
}

func TestStartGameAuthorizationAndMinPlayers(t *testing.T) {
	svc := newTestService(1)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")

	if _, err := svc.StartGame(room, "a"); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}

	mustJoin(t, svc, room, "b", "B")
	if _, err := svc.StartGame(room, "b"); !errors.Is(err, ErrStartNotOwner) {
		t.Fatalf("err = %v, want ErrStartNotOwner", err)
	}
}

func TestStartGameDealComposition(t *testing.T) {
	for _, numPlayers := range []int{2, 3, 4} {
		svc := newTestService(int64(numPlayers) * 7)
		room := newTestRoom()
		ids := []string{"a", "b", "c", "d"}[:numPlayers]
		for _, id := range ids {
			mustJoin(t, svc, room, id, id)
		}
		mustStart(t, svc, room, "a")

		if got := totalChits(room); got != 4*numPlayers {
			t.Fatalf("N=%d: total chits = %d, want %d", numPlayers, got, 4*numPlayers)
		}
		for entity, count := range entityCounts(room) {
			if count%4 != 0 {
				t.Fatalf("N=%d: entity %s count = %d, want a multiple of 4", numPlayers, entity, count)
			}
		}
		for _, id := range ids {
			if got := len(room.Players[id].Hand); got != 4 {
				t.Fatalf("N=%d: hand of %s = %d chits, want 4", numPlayers, id, got)
			}
		}
		if !reflect.DeepEqual(room.PlayerOrder, ids) {
			t.Fatalf("N=%d: playerOrder = %v, want %v", numPlayers, room.PlayerOrder, ids)
		}
		if room.Phase != domain.PhasePlaying || room.CurrentTurnIndex != 0 || room.PassRound != 1 {
			t.Fatalf("N=%d: phase=%s turn=%d passRound=%d", numPlayers, room.Phase, room.CurrentTurnIndex, room.PassRound)
		}
	}
}

func TestStartGameSynthesizesEntities(t *testing.T) {
	svc := newTestService(3)
	room := newTestRoom()
	room.Settings.EntityNames = []string{"Lion", "Tiger"}
	for _, id := range []string{"a", "b", "c", "d"} {
		mustJoin(t, svc, room, id, id)
	}
	mustStart(t, svc, room, "a")

	want := []string{"Lion", "Tiger", "Entity3", "Entity4"}
	if !reflect.DeepEqual(room.Settings.EntityNames, want) {
		t.Fatalf("entity names = %v, want %v", room.Settings.EntityNames, want)
	}
}

func TestStartGameEventOrderingAndPrivacy(t *testing.T) {
	svc := newTestService(5)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	events, err := svc.StartGame(room, "a")
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	if events[0].Kind != EventGameStarted || events[1].Kind != EventRoomState {
		t.Fatalf("event order = %s,%s want game_started,room_state", events[0].Kind, events[1].Kind)
	}
	hands := 0
	for _, ev := range events[2:] {
		if ev.Kind != EventHandUpdated {
			t.Fatalf("trailing event kind = %s, want your_hand", ev.Kind)
		}
		if len(ev.Recipients) != 1 {
			t.Fatalf("hand event recipients = %d, want 1", len(ev.Recipients))
		}
		payload := ev.Payload.(HandUpdatedPayload)
		if ev.Recipients[0] != payload.PlayerID {
			t.Fatalf("hand for %s addressed to %s", payload.PlayerID, ev.Recipients[0])
		}
		hands++
	}
	if hands != 2 {
		t.Fatalf("hand events = %d, want 2", hands)
	}
}

func TestPassChitMovesOneChitClockwise(t *testing.T) {
	svc := newTestService(9)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	passed := room.Players["a"].Hand[2]
	events, err := svc.PassChit(room, "a", 2)
	if err != nil {
		t.Fatalf("pass chit: %v", err)
	}

	if got := len(room.Players["a"].Hand); got != 3 {
		t.Fatalf("sender hand = %d, want 3", got)
	}
	if got := len(room.Players["b"].Hand); got != 5 {
		t.Fatalf("receiver hand = %d, want 5", got)
	}
	if got := room.Players["b"].Hand[4]; got != passed {
		t.Fatalf("appended chit = %q, want %q", got, passed)
	}
	if room.CurrentTurnIndex != 1 {
		t.Fatalf("turn index = %d, want 1", room.CurrentTurnIndex)
	}

	// Two private hand deliveries then the broadcast snapshot.
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if len(events[0].Recipients) != 1 || events[0].Recipients[0] != "a" {
		t.Fatalf("first hand event not private to sender")
	}
	if len(events[1].Recipients) != 1 || events[1].Recipients[0] != "b" {
		t.Fatalf("second hand event not private to receiver")
	}
	if events[2].Kind != EventRoomState || len(events[2].Recipients) != 0 {
		t.Fatalf("final event should be the broadcast snapshot")
	}
}

func TestPassChitOutOfTurnLeavesHandsUntouched(t *testing.T) {
	svc := newTestService(9)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	handA := append([]string{}, room.Players["a"].Hand...)
	handB := append([]string{}, room.Players["b"].Hand...)

	if _, err := svc.PassChit(room, "b", 0); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if !reflect.DeepEqual(room.Players["a"].Hand, handA) || !reflect.DeepEqual(room.Players["b"].Hand, handB) {
		t.Fatalf("hands mutated by rejected pass")
	}
	if room.CurrentTurnIndex != 0 || room.PassRound != 1 {
		t.Fatalf("turn state mutated by rejected pass")
	}
}

func TestPassChitIgnoresUnaddressableRequests(t *testing.T) {
	svc := newTestService(9)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	// Not playing yet.
	if events, err := svc.PassChit(room, "a", 0); events != nil || err != nil {
		t.Fatalf("pre-deal pass: events=%v err=%v, want silence", events, err)
	}

	mustStart(t, svc, room, "a")

	// Unknown sender.
	if events, err := svc.PassChit(room, "ghost", 0); events != nil || err != nil {
		t.Fatalf("unknown sender: events=%v err=%v, want silence", events, err)
	}
	// Out of the hand's bounds.
	for _, idx := range []int{-1, 4, 99} {
		if events, err := svc.PassChit(room, "a", idx); events != nil || err != nil {
			t.Fatalf("index %d: events=%v err=%v, want silence", idx, events, err)
		}
	}
}

func TestPassRoundIncrementsPerFullLap(t *testing.T) {
	svc := newTestService(11)
	room := newTestRoom()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		mustJoin(t, svc, room, id, id)
	}
	mustStart(t, svc, room, "a")

	for lap := 0; lap < 2; lap++ {
		for i, id := range ids {
			if room.PassRound != 1+lap {
				t.Fatalf("lap %d step %d: passRound = %d, want %d", lap, i, room.PassRound, 1+lap)
			}
			if _, err := svc.PassChit(room, id, 0); err != nil {
				t.Fatalf("pass by %s: %v", id, err)
			}
		}
	}
	if room.PassRound != 3 {
		t.Fatalf("passRound after 2 laps = %d, want 3", room.PassRound)
	}
}

func TestPassChitToDisconnectedReceiver(t *testing.T) {
	svc := newTestService(13)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	svc.Disconnect(room, "b")

	if _, err := svc.PassChit(room, "a", 0); err != nil {
		t.Fatalf("pass to disconnected receiver: %v", err)
	}
	if got := len(room.Players["b"].Hand); got != 5 {
		t.Fatalf("retained receiver hand = %d, want 5", got)
	}
	if got := totalChits(room); got != 8 {
		t.Fatalf("total chits = %d, want 8", got)
	}
}

func TestClaimWin(t *testing.T) {
	svc := newTestService(17)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "Alice")
	mustJoin(t, svc, room, "b", "Bob")
	mustStart(t, svc, room, "a")

	room.Players["a"].Hand = []string{"Lion", "Lion", "Lion", "Tiger"}
	room.Players["b"].Hand = []string{"Tiger", "Tiger", "Tiger", "Tiger"}

	if _, err := svc.ClaimWin(room, "a"); !errors.Is(err, ErrClaimRejected) {
		t.Fatalf("mixed-hand claim err = %v, want ErrClaimRejected", err)
	}
	if room.Phase != domain.PhasePlaying || room.Winner != "" {
		t.Fatalf("rejected claim mutated state: phase=%s winner=%q", room.Phase, room.Winner)
	}

	events, err := svc.ClaimWin(room, "b")
	if err != nil {
		t.Fatalf("claim win: %v", err)
	}
	if room.Phase != domain.PhaseFinished {
		t.Fatalf("phase = %s, want finished", room.Phase)
	}
	if room.Winner != "b" || room.WinnerName != "Bob" || room.WinnerEntity != "Tiger" {
		t.Fatalf("winner fields = %s/%s/%s", room.Winner, room.WinnerName, room.WinnerEntity)
	}
	if room.Players["b"].Score != 1 {
		t.Fatalf("score = %d, want 1", room.Players["b"].Score)
	}

	if events[0].Kind != EventWinner || events[1].Kind != EventRoomState {
		t.Fatalf("event order = %s,%s want winner,room_state", events[0].Kind, events[1].Kind)
	}
	payload := events[0].Payload.(WinnerPayload)
	if payload.PlayerID != "b" || payload.PlayerName != "Bob" || payload.Entity != "Tiger" {
		t.Fatalf("winner payload = %+v", payload)
	}

	// No further claim processing once the phase has left playing.
	if got, err := svc.ClaimWin(room, "a"); got != nil || err != nil {
		t.Fatalf("post-finish claim: events=%v err=%v, want silence", got, err)
	}
}

func TestPlayAgainResetsRoundKeepsScores(t *testing.T) {
	svc := newTestService(19)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")
	mustStart(t, svc, room, "a")

	room.Players["b"].Hand = []string{"Tiger", "Tiger", "Tiger", "Tiger"}
	if _, err := svc.ClaimWin(room, "b"); err != nil {
		t.Fatalf("claim win: %v", err)
	}

	if _, err := svc.PlayAgain(room, "b"); !errors.Is(err, ErrPlayAgainNotOwner) {
		t.Fatalf("err = %v, want ErrPlayAgainNotOwner", err)
	}

	if _, err := svc.PlayAgain(room, "a"); err != nil {
		t.Fatalf("play again: %v", err)
	}
	if room.Phase != domain.PhaseLobby {
		t.Fatalf("phase = %s, want lobby", room.Phase)
	}
	if room.Round != 2 {
		t.Fatalf("round = %d, want 2", room.Round)
	}
	if room.Winner != "" || room.WinnerName != "" || room.WinnerEntity != "" {
		t.Fatalf("winner fields not cleared")
	}
	if room.Players["b"].Score != 1 {
		t.Fatalf("score reset by play again: %d", room.Players["b"].Score)
	}
	for id, p := range room.Players {
		if len(p.Hand) != 0 {
			t.Fatalf("hand of %s not cleared: %v", id, p.Hand)
		}
	}

	// No-op outside the finished phase.
	if events, err := svc.PlayAgain(room, "a"); events != nil || err != nil {
		t.Fatalf("lobby play again: events=%v err=%v, want silence", events, err)
	}
}

// TestTwoPlayerScenario plays out a full Lion/Tiger room with two players:
// repeated passing never changes the combined composition, and a non-owner
// settings update is rejected without effect.
func TestTwoPlayerScenario(t *testing.T) {
	svc := newTestService(42)
	room := newTestRoom()
	mustJoin(t, svc, room, "a", "A")
	mustJoin(t, svc, room, "b", "B")

	if _, err := svc.UpdateSettings(room, "b", SettingsPatch{EntityNames: []string{"Cat", "Dog"}}); !errors.Is(err, ErrSettingsNotOwner) {
		t.Fatalf("err = %v, want ErrSettingsNotOwner", err)
	}
	if !reflect.DeepEqual(room.Settings.EntityNames, []string{"Lion", "Tiger"}) {
		t.Fatalf("settings touched by rejected update: %v", room.Settings.EntityNames)
	}

	mustStart(t, svc, room, "a")

	want := map[string]int{"Lion": 4, "Tiger": 4}
	if !reflect.DeepEqual(entityCounts(room), want) {
		t.Fatalf("deal composition = %v, want %v", entityCounts(room), want)
	}

	for i := 0; i < 20; i++ {
		turnPlayer := room.CurrentTurnPlayerID()
		hand := room.Players[turnPlayer].Hand
		if _, err := svc.PassChit(room, turnPlayer, i%len(hand)); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if got := totalChits(room); got != 8 {
			t.Fatalf("pass %d: total chits = %d, want 8", i, got)
		}
		if !reflect.DeepEqual(entityCounts(room), want) {
			t.Fatalf("pass %d: composition = %v, want %v", i, entityCounts(room), want)
		}
	}
}
