package analysis

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	dm "github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/search"
)

// fakeChatModel 固定应答的 chat model 桩
type fakeChatModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

func newTestClient(reply string, err error) *Client {
	return NewClientWithModel(&fakeChatModel{reply: reply, err: err}, nil)
}

func TestClassifyPostParsesReply(t *testing.T) {
	c := newTestClient(`{"topic":"sync reliability","direction":"pain_point","intensity":"high"}`, nil)

	got := c.ClassifyPost(context.Background(), dm.ForumPost{Title: "sync keeps failing"})

	if got.Topic != "sync reliability" || got.Direction != dm.DirectionPainPoint || got.Intensity != dm.IntensityHigh {
		t.Errorf("got %+v", got)
	}
}

func TestClassifyPostCallFailureDefaultsLow(t *testing.T) {
	c := newTestClient("", errors.New("timeout"))

	got := c.ClassifyPost(context.Background(), dm.ForumPost{Title: "whatever"})

	if got.Topic != "other" || got.Direction != dm.DirectionNeutralObservation || got.Intensity != dm.IntensityLow {
		t.Errorf("got %+v, want the call-failure default", got)
	}
}

func TestClassifyPostParseFailureDefaultsMedium(t *testing.T) {
	c := newTestClient("no json here", nil)

	got := c.ClassifyPost(context.Background(), dm.ForumPost{Title: "whatever"})

	if got.Intensity != dm.IntensityMedium {
		t.Errorf("intensity = %q, want medium for unparseable replies", got.Intensity)
	}
}

func TestClassifyPostNormalizesEnums(t *testing.T) {
	c := newTestClient(`{"topic":"x","direction":"complaint","intensity":"extreme"}`, nil)

	got := c.ClassifyPost(context.Background(), dm.ForumPost{Title: "t"})

	if got.Direction != dm.DirectionNeutralObservation {
		t.Errorf("direction = %q, want fallback for unknown enum", got.Direction)
	}
	if got.Intensity != dm.IntensityMedium {
		t.Errorf("intensity = %q, want fallback for unknown enum", got.Intensity)
	}
}

func TestCheckRelevanceSurfacesError(t *testing.T) {
	c := newTestClient("", errors.New("timeout"))

	_, err := c.CheckRelevance(context.Background(), "invoices", nil, dm.ForumPost{})
	if err == nil {
		t.Error("expected error so the caller can fail open")
	}
}

func TestExtractCompetitorNamesExcludesSelf(t *testing.T) {
	c := newTestClient(`{"competitors":["Xero","  ","invoicebot","FreshBooks"]}`, nil)
	sctx := &dm.SolutionContext{Title: "InvoiceBot"}

	got := c.ExtractCompetitorNames(context.Background(), sctx, []search.Result{{Title: "hit"}})

	if len(got) != 2 || got[0] != "Xero" || got[1] != "FreshBooks" {
		t.Errorf("names = %v, want the solution itself and blanks removed", got)
	}
}

func TestExtractCompetitorNamesSkipsNonStringEntries(t *testing.T) {
	c := newTestClient(`{"competitors":["Pipedrive", 3, "HubSpot", {"name":"bad"}]}`, nil)
	sctx := &dm.SolutionContext{Title: "DealTracker"}

	got := c.ExtractCompetitorNames(context.Background(), sctx, []search.Result{{Title: "hit"}})

	if len(got) != 2 || got[0] != "Pipedrive" || got[1] != "HubSpot" {
		t.Errorf("names = %v, want [Pipedrive HubSpot]: non-string entries must be dropped, not the whole list", got)
	}
}

func TestAnalyzeCompetitorFailureReturnsEmptyFields(t *testing.T) {
	c := newTestClient("", errors.New("timeout"))

	got := c.AnalyzeCompetitor(context.Background(), &dm.SolutionContext{Title: "X"}, "Acme", "text")

	if got.Name != "Acme" {
		t.Errorf("name = %q", got.Name)
	}
	if got.RelevantFeatures == nil || got.UniqueEdges == nil || got.Weaknesses == nil {
		t.Error("all array fields must be empty non-nil slices on failure")
	}
}

func TestTruncateRespectsRuneBoundary(t *testing.T) {
	got := truncate("数据同步问题", 7)
	if got != "数据" {
		t.Errorf("truncate = %q, want the cut backed up to a rune boundary", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
}

func TestAnalyzeTrendFallback(t *testing.T) {
	c := newTestClient("not json", nil)
	article := search.Result{Title: "Some headline"}

	got := c.AnalyzeTrend(context.Background(), &dm.SolutionContext{Title: "X"}, article)

	if got.Name != "Some headline" || got.Direction != dm.TrendStable || got.Stance != dm.StanceNeutral {
		t.Errorf("got %+v, want the stable/neutral fallback", got)
	}
	if got.Implication != UnknownTrendImplication {
		t.Errorf("implication = %q, want %q", got.Implication, UnknownTrendImplication)
	}
}
