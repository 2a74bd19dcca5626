package entity

import "github.com/joseph-ayodele/contracts-checker/constants"

// Address is the normalized property address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Price amounts are integer cents. Cash and Financed are nil when the
// document did not state them.
type Price struct {
	TotalCents    int64  `json:"total_cents"`
	CashCents     *int64 `json:"cash_cents,omitempty"`
	FinancedCents *int64 `json:"financed_cents,omitempty"`
}

// Contract is the validated business record the rules run against.
// Dates are ISO yyyy-mm-dd; empty strings mean absent.
type Contract struct {
	Buyers            []string                `json:"buyers"`
	Sellers           []string                `json:"sellers"`
	Property          Address                 `json:"property"`
	Price             Price                   `json:"price"`
	FinancingType     constants.FinancingType `json:"financing_type"`
	EffectiveDate     string                  `json:"effective_date,omitempty"`
	ClosingDate       string                  `json:"closing_date,omitempty"`
	OptionFeeCents    *int64                  `json:"option_fee_cents,omitempty"`
	OptionPeriodDays  *int                    `json:"option_period_days,omitempty"`
	EarnestMoneyCents *int64                  `json:"earnest_money_cents,omitempty"`
	EscrowAgent       string                  `json:"escrow_agent,omitempty"`
	TitleCompany      string                  `json:"title_company,omitempty"`
	SpecialProvisions string                  `json:"special_provisions,omitempty"`
	FormVersion       string                  `json:"form_version,omitempty"`
	FormCode          string                  `json:"form_code,omitempty"`
}
