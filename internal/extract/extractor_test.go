package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/formversion"
	"github.com/joseph-ayodele/contracts-checker/internal/ocr"
	"github.com/joseph-ayodele/contracts-checker/internal/pdfdoc"
)

type fakeForms struct {
	fields []pdfdoc.Field
	err    error
}

func (f fakeForms) FormFields([]byte) ([]pdfdoc.Field, error) { return f.fields, f.err }

type fakeDetector struct {
	det   formversion.Detection
	calls int
}

func (f *fakeDetector) Detect([]byte) formversion.Detection {
	f.calls++
	return f.det
}

type countingRecognizer struct {
	text  string
	err   error
	calls int
}

func (c *countingRecognizer) Recognize(context.Context, []byte) (ocr.Result, error) {
	c.calls++
	return ocr.Result{FullText: c.text}, c.err
}

const ocrContract = `ONE TO FOUR FAMILY RESIDENTIAL CONTRACT (RESALE)
1. PARTIES: The parties to this contract are Alice Seller and Bob Seller (Seller) and Carol Buyer & Dan Buyer (Buyer).
2. PROPERTY: Lot 4, Block 2, Oak Addition, City of Austin, County of Travis, Texas, known as 123 Main St, Austin, tx 78701 (address/zip code).
3. SALES PRICE:
A. Cash portion of Sales Price payable by Buyer at closing ............ $ 5,000.00
B. Sum of all financing described in the attached: [X] FHA Insured Financing Addendum $ 295,000.00
C. Sales Price (Sum of A and B) ............ $ 300,000.00
5. EARNEST MONEY AND TERMINATION OPTION: Buyer shall deliver to Lone Star Title, as escrow agent, earnest money of $3,000.00 and an Option Fee of $250.00 within 3 days.
Buyer may terminate this contract within 7 days after the effective date of this contract.
9. CLOSING: The closing of the sale will be on or before 02/28/2025.
11. SPECIAL PROVISIONS: Seller to leave the refrigerator.
12. SETTLEMENT AND OTHER EXPENSES
EXECUTED the 03 day of January, 2025 01/03/2025 (Effective Date).
TREC NO. 20-17`

type ExtractorSuite struct {
	suite.Suite
	ctx context.Context
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorSuite))
}

func (s *ExtractorSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *ExtractorSuite) TestStructuredMode() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer Name 1", Value: " Carol Buyer "},
		{Name: "Buyer Name 2", Value: "Dan Buyer"},
		{Name: "Seller Name 1", Value: "Alice Seller"},
		{Name: "contract.Property Street", Value: "123 Main St"},
		{Name: "Property City", Value: "Austin"},
		{Name: "Property State", Value: "tx"},
		{Name: "Property Zip", Value: "78701"},
		{Name: "Sales Price", Value: "300,000.00"},
		{Name: "Cash Portion", Value: "5,000.00"},
		{Name: "Option Fee", Value: ""},
		{Name: "Buyer Signature", Value: "/s/ Carol"},
	}}
	det := &fakeDetector{det: formversion.Detection{Form: "TREC-20", Version: "20-18"}}
	rec := &countingRecognizer{}

	res, err := NewExtractor(forms, det, nil).Extract(s.ctx, []byte("%PDF"), Options{Recognizer: rec})
	s.Require().NoError(err)

	s.Equal(constants.ModeStructured, res.Meta.Mode)
	s.Equal("20-18", res.Meta.DetectedVersion)
	s.Zero(rec.calls, "recognizer must not run for structured documents")
	s.Equal(1, det.calls)

	raw := res.Raw
	s.Equal([]string{"Carol Buyer", "Dan Buyer"}, raw.Buyers)
	s.Equal([]string{"Alice Seller"}, raw.Sellers)
	s.Equal("123 Main St", raw.Property.Street)
	s.Equal("tx", raw.Property.State)
	s.Equal("300,000.00", raw.Price.Total)
	s.Require().NotNil(raw.Price.Cash)
	s.Equal("5,000.00", *raw.Price.Cash)
	s.Nil(raw.Price.Financed, "absent fields stay absent")
	s.Require().NotNil(raw.OptionFee, "present-but-blank is kept")
	s.Equal("", *raw.OptionFee)
	s.Require().NotNil(raw.FormVersion)
	s.Equal("20-18", *raw.FormVersion)
	s.Require().NotNil(raw.FormCode)
	s.Equal("TREC-20", *raw.FormCode)
}

func (s *ExtractorSuite) TestIndexedSlotsKeepOrder() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer Name 2", Value: "Second"},
		{Name: "Buyer Name 1", Value: "First"},
	}}
	res, err := NewExtractor(forms, nil, nil).Extract(s.ctx, nil, Options{})
	s.Require().NoError(err)
	s.Equal([]string{"First", "Second"}, res.Raw.Buyers)
}

func (s *ExtractorSuite) TestSignatureOnlyFallsThroughToOCR() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer Signature", Value: "x"},
		{Name: "Seller Initials", Value: "AS"},
		{Name: "Sign Here", Value: ""},
	}}
	det := &fakeDetector{}
	ex := NewExtractor(forms, det, nil)

	s.Run("without recognizer", func() {
		res, err := ex.Extract(s.ctx, []byte("%PDF"), Options{})
		s.Require().Error(err)
		s.ErrorIs(err, common.ErrConfiguration)
		var appErr *common.AppError
		s.Require().True(errors.As(err, &appErr))
		s.Equal(common.CodeConfig, appErr.Code)
		s.Equal(Result{}, res)
	})

	s.Run("with recognizer", func() {
		rec := &countingRecognizer{text: "Seller: Alice\nBuyer: Bob\nTREC NO. 20-18"}
		res, err := ex.Extract(s.ctx, []byte("%PDF"), Options{Recognizer: rec})
		s.Require().NoError(err)
		s.Equal(1, rec.calls)
		s.Equal(constants.ModeOCRFallback, res.Meta.Mode)
		s.Equal([]string{"Bob"}, res.Raw.Buyers)
	})
	s.Zero(det.calls, "the detector is only consulted on the structured path")
}

func (s *ExtractorSuite) TestUnderscoreInitialsOnlyFallsThroughToOCR() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer_Initials", Value: "CB"},
		{Name: "Seller_Initial_2", Value: "AS"},
		{Name: "BuyerInitials", Value: "DB"},
		{Name: "Initials1", Value: "CB"},
		{Name: "Sig1", Value: "/s/"},
	}}
	ex := NewExtractor(forms, nil, nil)

	_, err := ex.Extract(s.ctx, []byte("%PDF"), Options{})
	s.ErrorIs(err, common.ErrConfiguration)

	res, err := ex.Extract(s.ctx, []byte("%PDF"), Options{Recognizer: ocr.NewStaticRecognizer(ocrContract)})
	s.Require().NoError(err)
	s.Equal(constants.ModeOCRFallback, res.Meta.Mode)
	s.Equal([]string{"Carol Buyer", "Dan Buyer"}, res.Raw.Buyers)
}

func (s *ExtractorSuite) TestBlankFormVersionFieldTakesDetectedVersion() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer Name 1", Value: "Carol Buyer"},
		{Name: "Form Version", Value: "   "},
	}}
	det := &fakeDetector{det: formversion.Detection{Form: "TREC-20", Version: "20-18"}}

	res, err := NewExtractor(forms, det, nil).Extract(s.ctx, []byte("%PDF"), Options{})
	s.Require().NoError(err)
	s.Require().NotNil(res.Raw.FormVersion)
	s.Equal("20-18", *res.Raw.FormVersion)
}

func (s *ExtractorSuite) TestFilledFormVersionFieldWins() {
	forms := fakeForms{fields: []pdfdoc.Field{
		{Name: "Buyer Name 1", Value: "Carol Buyer"},
		{Name: "Form Version", Value: "20-17"},
	}}
	det := &fakeDetector{det: formversion.Detection{Form: "TREC-20", Version: "20-18"}}

	res, err := NewExtractor(forms, det, nil).Extract(s.ctx, []byte("%PDF"), Options{})
	s.Require().NoError(err)
	s.Require().NotNil(res.Raw.FormVersion)
	s.Equal("20-17", *res.Raw.FormVersion)
}

func (s *ExtractorSuite) TestUnreadableFormsTreatedAsNoFields() {
	ex := NewExtractor(fakeForms{err: pdfdoc.ErrNotPDF}, nil, nil)
	_, err := ex.Extract(s.ctx, []byte("junk"), Options{})
	s.ErrorIs(err, common.ErrConfiguration)
}

func (s *ExtractorSuite) TestRecognizerFailure() {
	rec := &countingRecognizer{err: errors.New("engine down")}
	_, err := NewExtractor(nil, nil, nil).Extract(s.ctx, nil, Options{Recognizer: rec})
	s.Require().Error(err)
	s.Contains(err.Error(), "engine down")
	s.NotErrorIs(err, common.ErrConfiguration)
}

func (s *ExtractorSuite) TestOCRBattery() {
	res, err := NewExtractor(nil, nil, nil).Extract(s.ctx, nil, Options{Recognizer: ocr.NewStaticRecognizer(ocrContract)})
	s.Require().NoError(err)

	raw := res.Raw
	s.Equal(constants.ModeOCRFallback, res.Meta.Mode)
	s.Equal("20-17", res.Meta.DetectedVersion)
	s.Equal("TREC-20", res.Meta.DetectedForm)

	s.Equal([]string{"Alice Seller", "Bob Seller"}, raw.Sellers)
	s.Equal([]string{"Carol Buyer", "Dan Buyer"}, raw.Buyers)
	s.Equal("123 Main St", raw.Property.Street)
	s.Equal("Austin", raw.Property.City)
	s.Equal("tx", raw.Property.State)
	s.Equal("78701", raw.Property.Zip)
	s.Equal("300,000.00", raw.Price.Total)
	s.Require().NotNil(raw.Price.Cash)
	s.Equal("5,000.00", *raw.Price.Cash)
	s.Require().NotNil(raw.Price.Financed)
	s.Equal("295,000.00", *raw.Price.Financed)

	s.Require().NotNil(raw.FinancingType)
	s.Equal("FHA Insured", *raw.FinancingType)
	s.Require().NotNil(raw.EarnestMoney)
	s.Equal("3,000.00", *raw.EarnestMoney)
	s.Require().NotNil(raw.OptionFee)
	s.Equal("250.00", *raw.OptionFee)
	s.Require().NotNil(raw.OptionPeriodDays)
	s.Equal("7", *raw.OptionPeriodDays)
	s.Require().NotNil(raw.EscrowAgent)
	s.Equal("Lone Star Title", *raw.EscrowAgent)
	s.Require().NotNil(raw.ClosingDate)
	s.Equal("02/28/2025", *raw.ClosingDate)
	s.Require().NotNil(raw.EffectiveDate)
	s.Equal("01/03/2025", *raw.EffectiveDate)
	s.Require().NotNil(raw.SpecialProvisions)
	s.Equal("Seller to leave the refrigerator.", *raw.SpecialProvisions)
	s.Require().NotNil(raw.FormVersion)
	s.Equal("20-17", *raw.FormVersion)

	s.Nil(raw.TitleCompany, "unmatched optional fields are omitted")
}

func (s *ExtractorSuite) TestOCRLabelledAlternatives() {
	text := "Seller: Ann Smith; Joe Smith\nBuyer: Kim Lee\nProperty Address: 9 Elm Rd, Dallas, TX 75201\nSales Price: $410,000\nFinancing Type: Conventional\nClosing Date: 03/14/2025\nTitle Company: First American Title"
	res, err := NewExtractor(nil, nil, nil).Extract(s.ctx, nil, Options{Recognizer: ocr.NewStaticRecognizer(text)})
	s.Require().NoError(err)

	raw := res.Raw
	s.Equal([]string{"Ann Smith", "Joe Smith"}, raw.Sellers)
	s.Equal("9 Elm Rd", raw.Property.Street)
	s.Equal("Dallas", raw.Property.City)
	s.Equal("410,000", raw.Price.Total)
	s.Require().NotNil(raw.TitleCompany)
	s.Equal("First American Title", *raw.TitleCompany)
	s.Nil(raw.FormVersion)
	s.Equal(constants.FormUnknown, res.Meta.DetectedForm)
}

func TestIsSignatureField(t *testing.T) {
	for _, name := range []string{
		"Buyer Signature", "Seller Initials", "initial", "Sign Here 2", "form.Sig1/Sig", "Initialed for identification",
		"Buyer_Initials", "BuyerInitials", "Initials1", "Seller_Initial_2", "Sig1", "SignHere", "buyersignature",
	} {
		assert.True(t, IsSignatureField(name), name)
	}
	for _, name := range []string{"Buyer Name 1", "Sales Price", "Special Provisions", "Initiative", "Initiatives_1", "Design Fee", "Signal Strength"} {
		assert.False(t, IsSignatureField(name), name)
	}
}

func TestRawTreeSet(t *testing.T) {
	tree := rawTree{}
	tree.set("property.city", nil, "Austin")
	tree.set("buyers", slot(1), "B")
	require.True(t, tree.has("property.city"))
	require.True(t, tree.has("buyers"))
	require.False(t, tree.has("property.zip"))
	tree.set("form_version", nil, " ")
	assert.True(t, tree.blank("form_version"))
	assert.True(t, tree.blank("property.zip"))
	assert.False(t, tree.blank("property.city"))

	raw, err := tree.decode()
	require.NoError(t, err)
	assert.Equal(t, "Austin", raw.Property.City)
	assert.Equal(t, []string{"", "B"}, raw.Buyers)
}
