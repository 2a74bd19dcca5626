package provisions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/llm"
)

type fakeClassifier struct {
	out   llm.ProvisionsAssessment
	err   error
	calls int
	last  llm.ProvisionsRequest
}

func (f *fakeClassifier) ClassifyProvisions(_ context.Context, req llm.ProvisionsRequest) (llm.ProvisionsAssessment, []byte, error) {
	f.calls++
	f.last = req
	return f.out, nil, f.err
}

type AnalyzerSuite struct {
	suite.Suite
	ctx context.Context
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerSuite))
}

func (s *AnalyzerSuite) SetupTest() {
	s.ctx = context.Background()
}

func contract(text string) entity.Contract {
	return entity.Contract{SpecialProvisions: text, FormVersion: "20-18", Property: entity.Address{State: "TX"}}
}

func (s *AnalyzerSuite) TestEmptyProvisions() {
	fc := &fakeClassifier{}
	out := NewAnalyzer(fc, nil).Analyze(s.ctx, contract("  "))
	s.Equal(constants.RiskOK, out.Level)
	s.Equal(SourceNone, out.Source)
	s.Zero(fc.calls)
	_, ok := out.Issue()
	s.False(ok)
}

func (s *AnalyzerSuite) TestHeuristicsOnly() {
	a := NewAnalyzer(nil, nil)

	out := a.Analyze(s.ctx, contract("Seller to leave the refrigerator."))
	s.Equal(constants.RiskOK, out.Level)
	s.Empty(out.Flags)

	out = a.Analyze(s.ctx, contract("Buyer purchases the property AS-IS and may assign this contract."))
	s.Equal(constants.RiskCaution, out.Level)
	s.Equal(SourceHeuristic, out.Source)
	s.Equal([]string{"assignment", "as_is"}, out.Flags)
}

func (s *AnalyzerSuite) TestCombination() {
	tests := []struct {
		name       string
		text       string
		classifier string
		want       constants.RiskLevel
		source     string
	}{
		{name: "classifier ok, no flags", text: "Seller leaves the washer.", classifier: "ok", want: constants.RiskOK, source: SourceClassifier},
		{name: "classifier ok raised to floor", text: "Buyer waives the survey.", classifier: "ok", want: constants.RiskCaution, source: SourceHeuristic},
		{name: "classifier caution kept", text: "Buyer waives the survey.", classifier: "caution", want: constants.RiskCaution, source: SourceClassifier},
		{name: "classifier high wins", text: "Buyer waives the survey.", classifier: "HIGH", want: constants.RiskHigh, source: SourceClassifier},
		{name: "classifier high without flags", text: "Closing at buyer's attorney office.", classifier: "high", want: constants.RiskHigh, source: SourceClassifier},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			fc := &fakeClassifier{out: llm.ProvisionsAssessment{Level: tt.classifier, Reasons: []string{"r"}}}
			out := NewAnalyzer(fc, nil).Analyze(s.ctx, contract(tt.text))
			s.Equal(tt.want, out.Level)
			s.Equal(tt.source, out.Source)
			s.Equal([]string{"r"}, out.Reasons)
			s.Equal("TX", fc.last.PropertyState)
			s.Equal("20-18", fc.last.FormVersion)
		})
	}
}

func (s *AnalyzerSuite) TestClassifierFailureFallsBack() {
	fc := &fakeClassifier{err: errors.New("timeout")}
	out := NewAnalyzer(fc, nil).Analyze(s.ctx, contract("Seller will finance the balance."))
	s.Equal(1, fc.calls)
	s.Equal(constants.RiskCaution, out.Level)
	s.Equal(SourceHeuristic, out.Source)

	fc = &fakeClassifier{out: llm.ProvisionsAssessment{Level: "unsure"}}
	out = NewAnalyzer(fc, nil).Analyze(s.ctx, contract("Seller leaves the washer."))
	s.Equal(constants.RiskOK, out.Level)
	s.Equal(SourceHeuristic, out.Source)
}

func (s *AnalyzerSuite) TestIssue() {
	is, ok := Assessment{Level: constants.RiskCaution, Source: SourceHeuristic, Flags: []string{"as_is"}}.Issue()
	s.Require().True(ok)
	s.Equal("provisions.risk", is.ID)
	s.Equal(constants.SeverityMedium, is.Severity)
	s.Equal("Special provisions need review (as_is).", is.Message)

	is, ok = Assessment{Level: constants.RiskHigh, Source: SourceClassifier, Reasons: []string{"Assignment to unnamed party"}}.Issue()
	s.Require().True(ok)
	s.Equal(constants.SeverityHigh, is.Severity)
	s.Equal("Special provisions need review: Assignment to unnamed party.", is.Message)
}
