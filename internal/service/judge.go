package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
	"debate_arena/pkg/config"
)

// 每一方送進 prompt 的字數上限
const maxSideChars = 12000

const NoTranscriptVerdict = "### No Verdict\nThe debate ended without a single argument, so there was nothing to judge."

const failedVerdict = "### Judgment Failed\nThe AI judge could not analyse this debate (rate limit or connection error). " +
	"The host or a debater can request another judgment."

// Reasoner 外部推理服務
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type RoundSummary struct {
	Round   int    `json:"round"`
	Summary string `json:"summary"`
}

// Verdict Winner 為 nil 代表沒有可判決的內容
type Verdict struct {
	Winner        *models.Side
	Justification string
	Rounds        []RoundSummary
	Markdown      string
}

type judgeJob struct {
	roomID uint
	code   string
	manual bool
}

type JudgeService struct {
	repos     *repository.Repositories
	reasoner  Reasoner
	bc        Broadcaster
	log       *slog.Logger
	callDelay time.Duration
	workers   int
	sleep     func(ctx context.Context, d time.Duration) error

	queue    chan judgeJob
	mu       sync.Mutex
	inflight map[uint]bool
}

func NewJudgeService(repos *repository.Repositories, reasoner Reasoner, bc Broadcaster, cfg config.JudgeConfig, log *slog.Logger) *JudgeService {
	if log == nil {
		log = slog.Default()
	}
	return &JudgeService{
		repos:     repos,
		reasoner:  reasoner,
		bc:        bc,
		log:       log,
		callDelay: cfg.CallDelay,
		workers:   cfg.Workers,
		sleep:     sleepCtx,
		queue:     make(chan judgeJob, cfg.QueueSize),
		inflight:  make(map[uint]bool),
	}
}

// Enqueue 排入判決工作並立即推送 judging_started
// 同一房間同時只會有一個判決在進行
func (j *JudgeService) Enqueue(room *models.Room, manual bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.inflight[room.ID] {
		return fmt.Errorf("%w: judgment already in progress", ErrConflict)
	}
	// 只有持有 mu 的人會送進 queue，檢查完容量後送出不會阻塞
	if len(j.queue) == cap(j.queue) {
		return fmt.Errorf("%w: judging queue is full", ErrConflict)
	}

	j.inflight[room.ID] = true
	j.bc.BroadcastToRoom(room.Code, Event{Type: EventJudgingStarted, Payload: JudgingPayload{RoomID: room.ID, Manual: manual}})
	j.queue <- judgeJob{roomID: room.ID, code: room.Code, manual: manual}
	j.log.Info("judgment queued", "room", room.Code, "manual", manual)
	return nil
}

// Run 啟動背景 worker，ctx 結束後等所有 worker 離開
func (j *JudgeService) Run(ctx context.Context) {
	var wg conc.WaitGroup
	for i := 0; i < j.workers; i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-j.queue:
					var pc panics.Catcher
					pc.Try(func() { j.process(ctx, job) })
					if r := pc.Recovered(); r != nil {
						j.log.Error("judgment panicked", "room", job.code, "error", r.AsError())
					}
				}
			}
		})
	}
	wg.Wait()
}

func (j *JudgeService) release(roomID uint) {
	j.mu.Lock()
	delete(j.inflight, roomID)
	j.mu.Unlock()
}

// failed 通知房間判決沒有完成，讓前端離開等待狀態
func (j *JudgeService) failed(job judgeJob, reason string) {
	j.bc.BroadcastToRoom(job.code, Event{
		Type:    EventJudgingFailed,
		Payload: JudgingFailedPayload{RoomID: job.roomID, Manual: job.manual, Reason: reason},
	})
}

func (j *JudgeService) process(ctx context.Context, job judgeJob) {
	defer j.release(job.roomID)

	room, err := j.repos.Room.FindByID(ctx, job.roomID)
	if err != nil {
		j.log.Error("load room for judgment", "room", job.code, "error", err)
		j.failed(job, "could not load the room")
		return
	}
	args, err := j.repos.Argument.ListByRoom(ctx, room.ID)
	if err != nil {
		j.log.Error("load transcript", "room", room.Code, "error", err)
		j.failed(job, "could not load the transcript")
		return
	}

	verdict, err := j.Judge(ctx, room.Topic, args)
	if err != nil {
		// 失敗不消耗重判次數
		j.log.Error("judgment failed", "room", room.Code, "manual", job.manual, "error", err)
		if room.WinnerSide != nil {
			// 已有的判決保留不動
			j.failed(job, "the AI judge is unavailable, the previous verdict stands")
			return
		}
		j.publish(ctx, job, room, nil, failedVerdict, false)
		return
	}
	j.publish(ctx, job, room, verdict.Winner, verdict.Markdown, job.manual && verdict.Winner != nil)
}

func (j *JudgeService) publish(ctx context.Context, job judgeJob, room *models.Room, winner *models.Side, text string, countRetry bool) {
	if err := j.repos.Room.SaveVerdict(ctx, room.ID, winner, text, countRetry); err != nil {
		j.log.Error("save verdict", "room", room.Code, "error", err)
		j.failed(job, "could not save the verdict")
		return
	}
	room.WinnerSide = winner
	room.VerdictText = &text

	j.log.Info("verdict published", "room", room.Code, "winner", lo.FromPtrOr(winner, ""), "manual", job.manual)
	j.bc.BroadcastToRoom(room.Code, verdictEvent(room))
}

// Judge 先逐回合摘要 (依序、每次呼叫間隔 callDelay)，再根據所有摘要決定勝負
func (j *JudgeService) Judge(ctx context.Context, topic string, args []models.Argument) (*Verdict, error) {
	if len(args) == 0 {
		return &Verdict{Markdown: NoTranscriptVerdict}, nil
	}

	byRound := lo.GroupBy(args, func(a models.Argument) int { return a.RoundNumber })
	rounds := lo.Max(lo.Keys(byRound))

	summaries := make([]RoundSummary, 0, rounds)
	for r := 1; r <= rounds; r++ {
		if r > 1 {
			if err := j.sleep(ctx, j.callDelay); err != nil {
				return nil, err
			}
		}
		pro := lo.Filter(byRound[r], func(a models.Argument, _ int) bool { return a.Side == models.SidePro })
		contra := lo.Filter(byRound[r], func(a models.Argument, _ int) bool { return a.Side == models.SideContra })

		out, err := j.reasoner.Generate(ctx, roundPrompt(topic, r, pro, contra))
		if err != nil {
			return nil, fmt.Errorf("%w: summarize round %d: %v", ErrExternalService, r, err)
		}
		var parsed struct {
			Round   int    `json:"round"`
			Summary string `json:"summary"`
		}
		if err := parseModelJSON(out, &parsed); err != nil || strings.TrimSpace(parsed.Summary) == "" {
			return nil, fmt.Errorf("%w: round %d summary is not valid JSON", ErrExternalService, r)
		}
		summaries = append(summaries, RoundSummary{Round: r, Summary: strings.TrimSpace(parsed.Summary)})
	}

	if err := j.sleep(ctx, j.callDelay); err != nil {
		return nil, err
	}
	out, err := j.reasoner.Generate(ctx, verdictPrompt(topic, summaries))
	if err != nil {
		return nil, fmt.Errorf("%w: final verdict: %v", ErrExternalService, err)
	}
	var final struct {
		Winner        string `json:"winner"`
		Justification string `json:"justification"`
	}
	if err := parseModelJSON(out, &final); err != nil {
		return nil, fmt.Errorf("%w: final verdict is not valid JSON", ErrExternalService)
	}

	winner := NormalizeWinner(final.Winner)
	v := &Verdict{
		Winner:        &winner,
		Justification: strings.TrimSpace(final.Justification),
		Rounds:        summaries,
	}
	v.Markdown = renderVerdict(v)
	return v, nil
}

// 依序比對：先找正方的關鍵字，再找反方
var (
	proMarkers    = []string{"PRO", "GOV", "AFFIRM"}
	contraMarkers = []string{"CONTRA", "KONTRA", "OPP", "NEG"}
)

// NormalizeWinner 模型回傳的標籤常帶有說明文字，只要包含關鍵字就算數，其餘一律視為平手
func NormalizeWinner(label string) models.Side {
	upper := strings.ToUpper(label)
	has := func(marker string) bool { return strings.Contains(upper, marker) }
	switch {
	case lo.SomeBy(proMarkers, has):
		return models.SidePro
	case lo.SomeBy(contraMarkers, has):
		return models.SideContra
	default:
		return models.SideDraw
	}
}

func roundPrompt(topic string, round int, pro, contra []models.Argument) string {
	return fmt.Sprintf(`You are an expert debate analyst. Analyse round %d.
Motion: %q

PRO arguments:
%s

CONTRA arguments:
%s

A side without arguments forfeits this round.
Answer in JSON: {"round": %d, "summary": "who had the edge in this round and why (at most 2 sentences)"}`,
		round, topic, sideText(pro), sideText(contra), round)
}

func verdictPrompt(topic string, summaries []RoundSummary) string {
	lines := lo.Map(summaries, func(s RoundSummary, _ int) string {
		return fmt.Sprintf("Round %d: %s", s.Round, s.Summary)
	})
	return fmt.Sprintf(`You are the chief adjudicator evaluating the following debate.
Motion: %q

Round summaries:
%s

Based on the summaries, decide the overall winner and give a logical, impartial justification.
Answer in JSON: {"winner": "PRO" or "CONTRA" or "DRAW", "justification": "detailed explanation"}`,
		topic, strings.Join(lines, "\n"))
}

func sideText(args []models.Argument) string {
	if len(args) == 0 {
		return "(no arguments)"
	}
	text := strings.Join(lo.Map(args, func(a models.Argument, _ int) string { return a.Content }), "\n\n")
	if r := []rune(text); len(r) > maxSideChars {
		text = string(r[:maxSideChars])
	}
	return text
}

// parseModelJSON 模型常把 JSON 包在 ``` 區塊裡
func parseModelJSON(raw string, v interface{}) error {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)
	start, end := strings.Index(clean, "{"), strings.LastIndex(clean, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object in model output")
	}
	return json.Unmarshal([]byte(clean[start:end+1]), v)
}

func winnerLabel(side models.Side) string {
	switch side {
	case models.SidePro:
		return "GOVERNMENT (PRO)"
	case models.SideContra:
		return "OPPOSITION (CONTRA)"
	default:
		return "DRAW"
	}
}

func renderVerdict(v *Verdict) string {
	var b strings.Builder
	b.WriteString("### AI Judge Verdict\n")
	fmt.Fprintf(&b, "**Winner:** %s\n\n---\n", winnerLabel(lo.FromPtr(v.Winner)))
	b.WriteString("#### Justification\n")
	b.WriteString(v.Justification)
	b.WriteString("\n\n---\n#### Round Summaries\n")
	for _, s := range v.Rounds {
		fmt.Fprintf(&b, "* **Round %d:** %s\n", s.Round, s.Summary)
	}
	return strings.TrimSpace(b.String())
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
