package entity

import "github.com/joseph-ayodele/contracts-checker/constants"

// RawFieldMap maps a structured field name to its raw string value.
type RawFieldMap map[string]string

// ExtractionMeta is created once per extraction call.
type ExtractionMeta struct {
	Mode            constants.ExtractionMode `json:"mode"`
	DetectedVersion string                   `json:"detected_version,omitempty"`
	DetectedForm    string                   `json:"detected_form,omitempty"`
}

// RawAddress holds the property address exactly as extracted.
type RawAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// RawPrice holds the sales price paragraph as extracted strings.
type RawPrice struct {
	Total    string  `json:"total"`
	Cash     *string `json:"cash,omitempty"`
	Financed *string `json:"financed,omitempty"`
}

// RawContract is the mode-agnostic intermediate shape: both the structured
// reader and the OCR battery produce it. Nil optionals mean "not found",
// which the normalizer keeps distinct from "found but blank".
type RawContract struct {
	Buyers            []string   `json:"buyers,omitempty"`
	Sellers           []string   `json:"sellers,omitempty"`
	Property          RawAddress `json:"property"`
	Price             RawPrice   `json:"price"`
	FinancingType     *string    `json:"financing_type,omitempty"`
	EffectiveDate     *string    `json:"effective_date,omitempty"`
	ClosingDate       *string    `json:"closing_date,omitempty"`
	OptionFee         *string    `json:"option_fee,omitempty"`
	OptionPeriodDays  *string    `json:"option_period_days,omitempty"`
	EarnestMoney      *string    `json:"earnest_money,omitempty"`
	EscrowAgent       *string    `json:"escrow_agent,omitempty"`
	TitleCompany      *string    `json:"title_company,omitempty"`
	SpecialProvisions *string    `json:"special_provisions,omitempty"`
	FormVersion       *string    `json:"form_version,omitempty"`
	FormCode          *string    `json:"form_code,omitempty"`
}
