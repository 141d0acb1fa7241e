package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/model"
	"github.com/iliyamo/startera/internal/pdf"
	"github.com/iliyamo/startera/internal/prompts"
	"github.com/iliyamo/startera/internal/repository"
)

type turnView struct {
	Text        string
	IsAssistant bool
}

func historyOf(t *testing.T, log *ConversationLog) []turnView {
	t.Helper()
	turns, err := log.History(context.Background())
	require.NoError(t, err)
	out := make([]turnView, 0, len(turns))
	for _, tr := range turns {
		out = append(out, turnView{tr.Message, tr.IsAssistant()})
	}
	return out
}

func TestConversationLogOrder(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(newSelector(t, nil, database.Dialect{}), repository.NewHistoryRepo())

	require.NoError(t, log.Append(ctx, model.RoleUser, "hi"))
	require.NoError(t, log.Append(ctx, model.RoleAssistant, "hello"))

	want := []turnView{{"hi", false}, {"hello", true}}
	if diff := cmp.Diff(want, historyOf(t, log)); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
}

func TestChatReplyStoresBothTurns(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(newSelector(t, nil, database.Dialect{}), repository.NewHistoryRepo())
	gw := &fakeGateway{reply: "Merhaba"}
	svc := NewChatService(gw, catalogue(t), log, zap.NewNop())

	var invalidations int
	svc.OnHistoryChange(func(context.Context) { invalidations++ })

	reply := svc.Reply(ctx, "Selam", "Be brief.")
	assert.Equal(t, "Merhaba", reply)
	require.Len(t, gw.prompts, 1)
	assert.Equal(t, "Be brief.\n\nUser: Selam", gw.prompts[0])
	assert.Equal(t, 1, invalidations)

	want := []turnView{{"Selam", false}, {"Merhaba", true}}
	if diff := cmp.Diff(want, historyOf(t, log)); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
}

func TestChatReplyPlaceholders(t *testing.T) {
	ctx := context.Background()
	cat := catalogue(t)

	cases := []struct {
		name    string
		gateway *fakeGateway
		want    string
	}{
		{"no gateway", nil, cat.ReplyMissingKey},
		{"gateway error", &fakeGateway{err: fmt.Errorf("%w: quota", apperr.ErrGateway)}, cat.ReplyUnavailable},
		{"gateway timeout", &fakeGateway{err: apperr.ErrGatewayTimeout}, cat.ReplyUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := NewConversationLog(newSelector(t, nil, database.Dialect{}), repository.NewHistoryRepo())
			var svc *ChatService
			if tc.gateway == nil {
				svc = NewChatService(nil, cat, log, zap.NewNop())
			} else {
				svc = NewChatService(tc.gateway, cat, log, zap.NewNop())
			}
			assert.Equal(t, tc.want, svc.Reply(ctx, "hi", ""))
			assert.Len(t, historyOf(t, log), 2)
		})
	}
}

type brokenSource struct{}

func (brokenSource) Acquire(context.Context) (*database.Conn, error) {
	return nil, errors.New("disk full")
}

func TestChatReplySurvivesStorageFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := NewConversationLog(brokenSource{}, repository.NewHistoryRepo())
	svc := NewChatService(&fakeGateway{reply: "ok"}, catalogue(t), log, zap.New(core))

	assert.Equal(t, "ok", svc.Reply(context.Background(), "hi", ""))
	assert.Equal(t, 2, logs.FilterMessage("chat turn not stored").Len())
}

func TestPlanGenerate(t *testing.T) {
	gw := &fakeGateway{reply: "## YÖNETİCİ ÖZETİ\n**Kahve** dükkanı\n"}
	svc := NewPlanService(gw, catalogue(t))

	plan, err := svc.Generate(context.Background(), prompts.PlanInput{Idea: "kahve"})
	require.NoError(t, err)
	assert.Equal(t, "YÖNETİCİ ÖZETİ\nKahve dükkanı", plan)
	require.Len(t, gw.prompts, 1)
	assert.Contains(t, gw.prompts[0], "Dil: tr")
	assert.Contains(t, gw.prompts[0], "Fikir: kahve")
}

func TestPlanGenerateErrors(t *testing.T) {
	_, err := NewPlanService(nil, catalogue(t)).Generate(context.Background(), prompts.PlanInput{Idea: "x"})
	assert.ErrorIs(t, err, apperr.ErrGatewayUnconfigured)

	_, err = NewPlanService(&fakeGateway{err: apperr.ErrGatewayTimeout}, catalogue(t)).
		Generate(context.Background(), prompts.PlanInput{Idea: "x"})
	assert.ErrorIs(t, err, apperr.ErrGatewayTimeout)
}

type fakeArchiver struct {
	stored [][]byte
	err    error
}

func (a *fakeArchiver) Store(_ context.Context, body []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.stored = append(a.stored, body)
	return "plans/key.pdf", nil
}

type failingRenderer struct{}

func (failingRenderer) Render(string, []string) ([]byte, error) { return nil, errBoom }

func TestExport(t *testing.T) {
	cat := catalogue(t)
	arch := &fakeArchiver{}
	svc := NewExportService(pdf.NewExporter(), arch, cat, zap.NewNop())

	doc, err := svc.Export(context.Background(), "PAZAR ANALİZİ\nHedef kitle öğrenciler.")
	require.NoError(t, err)
	assert.Equal(t, cat.PDFFilename, doc.Filename)
	assert.Equal(t, "%PDF-", string(doc.Body[:5]))
	require.Len(t, arch.stored, 1)
	assert.Equal(t, doc.Body, arch.stored[0])
}

func TestExportArchiveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewExportService(pdf.NewExporter(), &fakeArchiver{err: errBoom}, catalogue(t), zap.New(core))

	_, err := svc.Export(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("pdf archive failed").Len())
}

func TestExportRenderFailure(t *testing.T) {
	svc := NewExportService(failingRenderer{}, nil, catalogue(t), zap.NewNop())
	_, err := svc.Export(context.Background(), "text")
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
