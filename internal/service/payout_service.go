package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/raidsplit/internal/auth"
	"github.com/mmynk/raidsplit/internal/bonus"
	"github.com/mmynk/raidsplit/internal/calculator"
	"github.com/mmynk/raidsplit/internal/catalog"
	"github.com/mmynk/raidsplit/internal/deduction"
	"github.com/mmynk/raidsplit/internal/export"
	"github.com/mmynk/raidsplit/internal/metrics"
	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/resist"
	"github.com/mmynk/raidsplit/internal/share"
	"github.com/mmynk/raidsplit/internal/warcraftlogs"
)

// Procedure paths of the PayoutService.
const (
	PayoutServiceName = "raidsplit.v1.PayoutService"

	LoadReportProcedure        = "/" + PayoutServiceName + "/LoadReport"
	ComputePayoutProcedure     = "/" + PayoutServiceName + "/ComputePayout"
	SuggestDeductionsProcedure = "/" + PayoutServiceName + "/SuggestDeductions"
	AcceptSuggestionProcedure  = "/" + PayoutServiceName + "/AcceptSuggestion"
)

const (
	defaultCacheSize    = 64
	defaultFetchTimeout = 2 * time.Minute
)

// ReportSource loads a normalized report.
type ReportSource interface {
	FetchReport(ctx context.Context, code string, plan warcraftlogs.Planner) (*models.ReportData, error)
}

// session is a fetched report with everything derived from it that does not
// depend on user edits.
type session struct {
	report      *models.ReportData
	catalog     *catalog.Catalog
	resistances []models.ResistEstimate
	presence    map[string]map[int]bool
}

// PayoutService implements the Connect PayoutService.
type PayoutService struct {
	source     ReportSource
	catalogs   *catalog.Set
	table      *resist.Table
	engine     *deduction.Engine
	estimators map[models.RaidType]*resist.Estimator
	validate   *validator.Validate
	metrics    *metrics.Metrics

	cacheSize    int
	fetchTimeout time.Duration
	cache        *lru.Cache[string, *session]
	loads        singleflight.Group
}

// Option configures a PayoutService.
type Option func(*PayoutService)

// WithMetrics records cache lookups and suggestions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PayoutService) { s.metrics = m }
}

// WithCacheSize sets how many loaded reports are kept in memory.
func WithCacheSize(n int) Option {
	return func(s *PayoutService) { s.cacheSize = n }
}

// WithFetchTimeout bounds a shared report fetch independently of the callers waiting on it.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *PayoutService) { s.fetchTimeout = d }
}

// NewPayoutService creates a PayoutService. table holds the known item and
// enchant resistances; it may be nil.
func NewPayoutService(source ReportSource, catalogs *catalog.Set, table *resist.Table, opts ...Option) (*PayoutService, error) {
	s := &PayoutService{
		source:     source,
		catalogs:   catalogs,
		table:      table,
		estimators: make(map[models.RaidType]*resist.Estimator),
		validate:   newValidator(),
		cacheSize:    defaultCacheSize,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	rules, err := deduction.BuildRules(catalogs.DeductionRules())
	if err != nil {
		return nil, fmt.Errorf("failed to build deduction rules: %w", err)
	}
	s.engine = deduction.NewEngine(rules)

	for _, rt := range catalogs.RaidTypes() {
		cat, _ := catalogs.Get(rt)
		s.estimators[rt] = resist.NewEstimator(cat.ResistParams(), table, cat.BuffSpells())
	}

	cache, err := lru.New[string, *session](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Handler returns the path prefix and HTTP handler serving every procedure.
func (s *PayoutService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LoadReportProcedure, connect.NewUnaryHandler(LoadReportProcedure, s.LoadReport, opts...))
	mux.Handle(ComputePayoutProcedure, connect.NewUnaryHandler(ComputePayoutProcedure, s.ComputePayout, opts...))
	mux.Handle(SuggestDeductionsProcedure, connect.NewUnaryHandler(SuggestDeductionsProcedure, s.SuggestDeductions, opts...))
	mux.Handle(AcceptSuggestionProcedure, connect.NewUnaryHandler(AcceptSuggestionProcedure, s.AcceptSuggestion, opts...))
	return "/" + PayoutServiceName + "/", mux
}

// LoadReport fetches a report, detects bonuses and estimates resistances.
// A share string, when valid and for the same report, restores a saved session.
func (s *PayoutService) LoadReport(ctx context.Context, req *connect.Request[LoadReportRequest]) (*connect.Response[LoadReportResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, describe(err))
	}

	sess, code, err := s.load(ctx, req.Msg.ReportCode)
	if err != nil {
		slog.Error("LoadReport failed", "report_code", req.Msg.ReportCode, "error", err)
		return nil, toConnectError(err)
	}
	report := sess.report

	assignments := bonus.Resolve(report, sess.catalog)
	cfg := models.ConfigForRoster(len(report.Players))
	deductions := []models.Deduction{}

	shareApplied := false
	if req.Msg.Share != "" {
		payload, err := share.Decode(req.Msg.Share)
		switch {
		case err != nil:
			slog.Warn("Ignoring malformed share data", "report_code", code, "error", err)
		case payload.ReportCode != code:
			slog.Warn("Ignoring share data for another report", "report_code", code, "share_report_code", payload.ReportCode)
		default:
			assignments = payload.Apply(assignments)
			cfg = payload.ModelConfig()
			deductions = payload.ModelDeductions()
			shareApplied = true
		}
	}

	slog.Info("LoadReport",
		"report_code", code,
		"raid_type", sess.catalog.RaidType(),
		"players", len(report.Players),
		"share_applied", shareApplied,
	)

	return connect.NewResponse(&LoadReportResponse{
		ReportCode:   code,
		Title:        report.Title,
		ZoneName:     report.ZoneName,
		RaidType:     sess.catalog.RaidType(),
		RaidName:     sess.catalog.Name(),
		Players:      report.Players,
		Bonuses:      sess.catalog.Bonuses(),
		Config:       cfg,
		Assignments:  assignments,
		Deductions:   deductions,
		ShareApplied: shareApplied,
		Resistances:  sess.resistances,
		Rules:        s.rulesFor(sess.catalog.RaidType()),
		Suggestions:  s.suggest(sess, deductions),
	}), nil
}

// ComputePayout distributes the pot and renders the export and share strings.
func (s *PayoutService) ComputePayout(ctx context.Context, req *connect.Request[ComputePayoutRequest]) (*connect.Response[ComputePayoutResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, describe(err))
	}

	sess, code, err := s.load(ctx, req.Msg.ReportCode)
	if err != nil {
		slog.Error("ComputePayout failed to load report", "report_code", req.Msg.ReportCode, "error", err)
		return nil, toConnectError(err)
	}

	cfg := req.Msg.Config
	result, err := calculator.ComputePayout(cfg, req.Msg.Assignments, sess.report.Players, req.Msg.Deductions, sess.catalog)
	if err != nil {
		return nil, toConnectError(err)
	}

	shared, err := share.Encode(share.New(code, cfg, req.Msg.Assignments, req.Msg.Deductions))
	if err != nil {
		slog.Error("ComputePayout failed to encode share", "report_code", code, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Debug("ComputePayout",
		"report_code", code,
		"total_pot", cfg.TotalPot,
		"base_cut", result.BaseCut,
		"total_deducted", result.TotalDeducted,
		"cuts", len(result.PlayerCuts),
	)

	return connect.NewResponse(&ComputePayoutResponse{
		Result:     result,
		ImportList: export.ImportList(result.PlayerCuts),
		Sheet:      export.Sheet(cfg, result, req.Msg.Assignments, sess.catalog),
		Share:      shared,
	}), nil
}

// SuggestDeductions reruns the deduction rules, flagging suggestions the
// given deductions already cover.
func (s *PayoutService) SuggestDeductions(ctx context.Context, req *connect.Request[SuggestDeductionsRequest]) (*connect.Response[SuggestDeductionsResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, describe(err))
	}

	sess, _, err := s.load(ctx, req.Msg.ReportCode)
	if err != nil {
		slog.Error("SuggestDeductions failed", "report_code", req.Msg.ReportCode, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&SuggestDeductionsResponse{
		Suggestions: s.suggest(sess, req.Msg.Deductions),
	}), nil
}

// AcceptSuggestion turns a suggestion into a deduction.
func (s *PayoutService) AcceptSuggestion(ctx context.Context, req *connect.Request[AcceptSuggestionRequest]) (*connect.Response[AcceptSuggestionResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, describe(err))
	}

	d := deduction.Accept(req.Msg.Suggestion, req.Msg.Percentage)
	slog.Info("Suggestion accepted", "rule_id", d.RuleID, "player", d.PlayerName, "percentage", d.Percentage)
	return connect.NewResponse(&AcceptSuggestionResponse{Deduction: d}), nil
}

// load returns the session for a report, fetching it on a cache miss.
// Concurrent loads of one report with the same provider token share a single
// fetch. The fetch outlives any one caller; each caller stops waiting when its
// own context ends.
func (s *PayoutService) load(ctx context.Context, input string) (*session, string, error) {
	code, err := warcraftlogs.ParseReportCode(input)
	if err != nil {
		return nil, "", err
	}

	if sess, ok := s.cache.Get(code); ok {
		s.countCache(metrics.CacheHit)
		return sess, code, nil
	}
	s.countCache(metrics.CacheMiss)

	key := code
	if token, ok := auth.TokenFromContext(ctx); ok {
		key += "\x00" + token
	}
	shared := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(shared, s.fetchTimeout)
		defer cancel()

		sess, err := s.fetch(fctx, code)
		if err != nil {
			return nil, err
		}
		s.cache.Add(code, sess)
		return sess, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		return res.Val.(*session), code, nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (s *PayoutService) fetch(ctx context.Context, code string) (*session, error) {
	var cat *catalog.Catalog
	report, err := s.source.FetchReport(ctx, code, func(summary *models.ReportData) (warcraftlogs.Plan, error) {
		rt, err := s.catalogs.DetectRaidType(summary.ZoneName, summary.ZoneNames)
		if err != nil {
			return warcraftlogs.Plan{}, err
		}
		cat, _ = s.catalogs.Get(rt)
		return planFor(cat), nil
	})
	if err != nil {
		return nil, err
	}

	sess := &session{
		report:   report,
		catalog:  cat,
		presence: deduction.Presence(report.Auras, auraGroups(cat)),
	}

	enc, _ := cat.Encounter()
	sess.resistances = s.estimators[cat.RaidType()].Estimate(resist.Input{
		Players:   report.Players,
		AbilityID: enc.AbilityID,
		Samples:   report.DamageSamples,
		Gear:      report.GearSnapshots,
		Auras:     report.Auras,
	})
	for _, e := range sess.resistances {
		slog.Debug("Resist estimate", "report_code", code, "player", e.PlayerName, "rating", e.Rating, "source", e.Source, "samples", e.Samples)
	}
	return sess, nil
}

// planFor lists what to fetch for a raid: every cast group, every aura
// group's spells and the resist encounter.
func planFor(cat *catalog.Catalog) warcraftlogs.Plan {
	plan := warcraftlogs.Plan{CastGroups: cat.CastGroups()}
	for _, name := range cat.AuraGroupNames() {
		plan.AuraSpells = append(plan.AuraSpells, cat.AuraGroup(name)...)
	}
	if enc, ok := cat.Encounter(); ok {
		plan.EncounterName = enc.Name
		plan.MechanicAbilityID = enc.AbilityID
	}
	return plan
}

func auraGroups(cat *catalog.Catalog) map[string][]int {
	groups := make(map[string][]int)
	for _, name := range cat.AuraGroupNames() {
		groups[name] = cat.AuraGroup(name)
	}
	return groups
}

func (s *PayoutService) suggest(sess *session, deductions []models.Deduction) []Suggestion {
	suggested := s.engine.Suggest(deduction.Context{
		RaidType:    sess.catalog.RaidType(),
		Players:     sess.report.Players,
		Resistances: resist.ByPlayer(sess.resistances),
		Presence:    sess.presence,
	})

	out := make([]Suggestion, 0, len(suggested))
	for _, sd := range suggested {
		out = append(out, Suggestion{SuggestedDeduction: sd, Applied: deduction.IsApplied(deductions, sd)})
		if s.metrics != nil {
			s.metrics.Suggestions.WithLabelValues(sd.RuleID).Inc()
		}
	}
	return out
}

func (s *PayoutService) rulesFor(rt models.RaidType) []deduction.Meta {
	var out []deduction.Meta
	for _, m := range s.engine.Rules() {
		if m.AppliesTo(rt) {
			out = append(out, m)
		}
	}
	return out
}

func (s *PayoutService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.ReportCache.WithLabelValues(result).Inc()
	}
}
