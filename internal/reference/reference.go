// Package reference serves the read-only regulatory and internal tables a
// loan officer consults next to the calculator: collateral interest rates,
// small-deposit protection amounts, approval authorities, RTI ratios and
// add-on rates. The eligibility rules never read these tables.
package reference

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/loan-desk/pkg/datetime"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// ErrUnknownTable is returned by Table for a name not in TableNames.
var ErrUnknownTable = errors.New("unknown reference table")

// ErrUnknownRegion is returned when a deposit protection region has no entry.
var ErrUnknownRegion = errors.New("unknown deposit protection region")

// Table names accepted by Table.
const (
	TableInterestRates       = "interest-rates"
	TableSpecialRates        = "special-rates"
	TableDepositProtection   = "deposit-protection"
	TableApprovalAuthorities = "approval-authorities"
	TableRTIRatios           = "rti-ratios"
	TableAddOnRates          = "add-on-rates"
	TableLinks               = "links"
)

// TableNames lists every table in display order.
var TableNames = []string{
	TableInterestRates,
	TableSpecialRates,
	TableDepositProtection,
	TableApprovalAuthorities,
	TableRTIRatios,
	TableAddOnRates,
	TableLinks,
}

// DepositRegion classifies a property for small-deposit protection.
type DepositRegion string

const (
	DepositRegionSeoul            DepositRegion = "SEOUL"
	DepositRegionOverConcentrated DepositRegion = "OVER_CONCENTRATED"
	DepositRegionMetropolitan     DepositRegion = "METROPOLITAN"
	DepositRegionOthers           DepositRegion = "OTHERS"
)

// DepositRegions lists every deposit protection region in display order.
var DepositRegions = []DepositRegion{
	DepositRegionSeoul,
	DepositRegionOverConcentrated,
	DepositRegionMetropolitan,
	DepositRegionOthers,
}

// CollateralRisk is the risk class used by the approval-authority matrix.
type CollateralRisk string

const (
	CollateralHighRisk CollateralRisk = "HIGH_RISK"
	CollateralGeneral  CollateralRisk = "GENERAL"
)

// ParseCollateralRisk accepts the canonical names in any case, with hyphens
// or spaces for underscores.
func ParseCollateralRisk(value string) (CollateralRisk, error) {
	switch r := CollateralRisk(canonical(value)); r {
	case CollateralHighRisk, CollateralGeneral:
		return r, nil
	}
	return "", fmt.Errorf("unknown collateral risk %q", value)
}

// AuthorityArea splits the approval-authority matrix by location.
type AuthorityArea string

const (
	AreaSeoul        AuthorityArea = "SEOUL"
	AreaOutsideSeoul AuthorityArea = "OUTSIDE_SEOUL"
)

// ParseAuthorityArea accepts the canonical names like ParseCollateralRisk.
func ParseAuthorityArea(value string) (AuthorityArea, error) {
	switch a := AuthorityArea(canonical(value)); a {
	case AreaSeoul, AreaOutsideSeoul:
		return a, nil
	}
	return "", fmt.Errorf("unknown authority area %q", value)
}

func canonical(value string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(value)))
}

// InterestRate is the base annual rate for a collateral category.
type InterestRate struct {
	Category string  `yaml:"category" json:"category"`
	Rate     float64 `yaml:"rate" json:"rate"`
}

// SpecialRate is a named preferential rate.
type SpecialRate struct {
	Name string  `yaml:"name" json:"name"`
	Rate float64 `yaml:"rate" json:"rate"`
}

// DepositProtection holds the small-deposit amounts deducted from collateral
// value for one region, in whole KRW.
type DepositProtection struct {
	Region      DepositRegion `yaml:"region" json:"region"`
	Housing     int64         `yaml:"housing" json:"housing"`
	Commercial  int64         `yaml:"commercial" json:"commercial"`
	Description string        `yaml:"description" json:"description"`
}

// ApprovalAuthority is one row of the approval-authority matrix. Above false
// means loans up to and including ThresholdMillions; true means above it.
type ApprovalAuthority struct {
	ID                int            `yaml:"id" json:"id"`
	Risk              CollateralRisk `yaml:"risk" json:"risk"`
	Area              AuthorityArea  `yaml:"area" json:"area"`
	ThresholdMillions int64          `yaml:"thresholdMillions" json:"thresholdMillions"`
	Above             bool           `yaml:"above" json:"above"`
	Authority         string         `yaml:"authority" json:"authority"`
	Remarks           string         `yaml:"remarks" json:"remarks"`
}

// Covers reports whether a loan amount in millions of KRW falls in this row's band.
func (a ApprovalAuthority) Covers(amount decimal.Decimal) bool {
	threshold := decimal.NewFromInt(a.ThresholdMillions)
	if a.Above {
		return amount.GreaterThan(threshold)
	}
	return amount.LessThanOrEqual(threshold)
}

// RTIRatio is the minimum rent-to-interest ratio for a rental business type.
type RTIRatio struct {
	Category string  `yaml:"category" json:"category"`
	Ratio    float64 `yaml:"ratio" json:"ratio"`
	Remarks  string  `yaml:"remarks,omitempty" json:"remarks,omitempty"`
}

// AddOnRate is a surcharge in percentage points.
type AddOnRate struct {
	Code   string  `yaml:"code" json:"code"`
	Label  string  `yaml:"label" json:"label"`
	Points float64 `yaml:"points" json:"points"`
}

// Links are the external tools referenced by the desk.
type Links struct {
	DSRCalculator string `yaml:"dsrCalculator" json:"dsrCalculator"`
	TaxCalculator string `yaml:"taxCalculator" json:"taxCalculator"`
	Assistant     string `yaml:"assistant" json:"assistant"`
}

// Tables is the complete reference document.
type Tables struct {
	EffectiveMonth      string              `yaml:"effectiveMonth" json:"effectiveMonth"`
	InterestRates       []InterestRate      `yaml:"interestRates" json:"interestRates"`
	SpecialRates        []SpecialRate       `yaml:"specialRates" json:"specialRates"`
	DepositProtection   []DepositProtection `yaml:"depositProtection" json:"depositProtection"`
	ApprovalAuthorities []ApprovalAuthority `yaml:"approvalAuthorities" json:"approvalAuthorities"`
	RTIRatios           []RTIRatio          `yaml:"rtiRatios" json:"rtiRatios"`
	AddOnRates          []AddOnRate         `yaml:"addOnRates" json:"addOnRates"`
	Links               Links               `yaml:"links" json:"links"`
}

// Provider is the read-only source of reference tables.
type Provider interface {
	Tables() Tables
	InterestRates() []InterestRate
	SpecialRates() []SpecialRate
	DepositProtection(region DepositRegion) (DepositProtection, error)
	ApprovalAuthorities(risk CollateralRisk) []ApprovalAuthority
	ApprovalAuthorityFor(risk CollateralRisk, area AuthorityArea, amount decimal.Decimal) (ApprovalAuthority, bool)
	RTIRatios() []RTIRatio
	AddOnRates() []AddOnRate
	Links() Links
}

// Static is a Provider backed by an immutable in-memory document.
type Static struct {
	tables    Tables
	effective time.Time
}

var _ Provider = (*Static)(nil)

// Default returns the tables embedded in the binary.
func Default() (*Static, error) {
	return Load(bytes.NewReader(defaultTables))
}

// LoadFile reads tables from a YAML file. An empty path yields Default.
func LoadFile(path string) (*Static, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file %s: %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference file %s: %w", path, err)
	}
	return s, nil
}

// Load decodes and validates a YAML reference document. Unknown keys are
// rejected.
func Load(r io.Reader) (*Static, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var tables Tables
	if err := decoder.Decode(&tables); err != nil {
		return nil, fmt.Errorf("failed to decode reference tables: %w", err)
	}

	effective, err := validate(tables)
	if err != nil {
		return nil, err
	}
	return &Static{tables: tables, effective: effective}, nil
}

func validate(t Tables) (time.Time, error) {
	effective, err := datetime.ParseMonth(t.EffectiveMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("effectiveMonth: %w", err)
	}

	if len(t.InterestRates) == 0 {
		return time.Time{}, errors.New("interestRates must not be empty")
	}

	seen := make(map[DepositRegion]bool, len(DepositRegions))
	for _, d := range t.DepositProtection {
		if !knownDepositRegion(d.Region) {
			return time.Time{}, fmt.Errorf("depositProtection: %w %q", ErrUnknownRegion, d.Region)
		}
		if seen[d.Region] {
			return time.Time{}, fmt.Errorf("depositProtection: duplicate region %s", d.Region)
		}
		if d.Housing < 0 || d.Commercial < 0 {
			return time.Time{}, fmt.Errorf("depositProtection: negative amount for %s", d.Region)
		}
		seen[d.Region] = true
	}
	for _, region := range DepositRegions {
		if !seen[region] {
			return time.Time{}, fmt.Errorf("depositProtection: missing region %s", region)
		}
	}

	ids := make(map[int]bool, len(t.ApprovalAuthorities))
	for _, a := range t.ApprovalAuthorities {
		if ids[a.ID] {
			return time.Time{}, fmt.Errorf("approvalAuthorities: duplicate id %d", a.ID)
		}
		ids[a.ID] = true
		switch a.Risk {
		case CollateralHighRisk, CollateralGeneral:
		default:
			return time.Time{}, fmt.Errorf("approvalAuthorities: id %d has unknown risk %q", a.ID, a.Risk)
		}
		switch a.Area {
		case AreaSeoul, AreaOutsideSeoul:
		default:
			return time.Time{}, fmt.Errorf("approvalAuthorities: id %d has unknown area %q", a.ID, a.Area)
		}
	}

	return effective, nil
}

func knownDepositRegion(r DepositRegion) bool {
	for _, known := range DepositRegions {
		if r == known {
			return true
		}
	}
	return false
}

// Effective returns the first month the tables apply to.
func (s *Static) Effective() time.Time {
	return s.effective
}

// AgeInMonths returns how many calendar months have passed since the
// effective month.
func (s *Static) AgeInMonths(now time.Time) int {
	return datetime.MonthsBetween(s.effective, now)
}

// Tables returns a deep copy of the whole document.
func (s *Static) Tables() Tables {
	t := s.tables
	t.InterestRates = s.InterestRates()
	t.SpecialRates = s.SpecialRates()
	t.DepositProtection = append([]DepositProtection(nil), s.tables.DepositProtection...)
	t.ApprovalAuthorities = append([]ApprovalAuthority(nil), s.tables.ApprovalAuthorities...)
	t.RTIRatios = s.RTIRatios()
	t.AddOnRates = s.AddOnRates()
	return t
}

// InterestRates returns the base rate per collateral category.
func (s *Static) InterestRates() []InterestRate {
	return append([]InterestRate(nil), s.tables.InterestRates...)
}

// SpecialRates returns the preferential rates.
func (s *Static) SpecialRates() []SpecialRate {
	return append([]SpecialRate(nil), s.tables.SpecialRates...)
}

// DepositProtection returns the protected amounts for a region.
func (s *Static) DepositProtection(region DepositRegion) (DepositProtection, error) {
	for _, d := range s.tables.DepositProtection {
		if d.Region == region {
			return d, nil
		}
	}
	return DepositProtection{}, fmt.Errorf("%w %q", ErrUnknownRegion, region)
}

// ApprovalAuthorities returns the matrix rows for a risk class, or every row
// when risk is empty.
func (s *Static) ApprovalAuthorities(risk CollateralRisk) []ApprovalAuthority {
	rows := []ApprovalAuthority{}
	for _, a := range s.tables.ApprovalAuthorities {
		if risk == "" || a.Risk == risk {
			rows = append(rows, a)
		}
	}
	return rows
}

// ApprovalAuthorityFor finds the row that decides a loan of the given amount.
func (s *Static) ApprovalAuthorityFor(risk CollateralRisk, area AuthorityArea, amount decimal.Decimal) (ApprovalAuthority, bool) {
	for _, a := range s.tables.ApprovalAuthorities {
		if a.Risk == risk && a.Area == area && a.Covers(amount) {
			return a, true
		}
	}
	return ApprovalAuthority{}, false
}

// RTIRatios returns the minimum rent-to-interest ratios.
func (s *Static) RTIRatios() []RTIRatio {
	return append([]RTIRatio(nil), s.tables.RTIRatios...)
}

// AddOnRates returns the rate surcharges.
func (s *Static) AddOnRates() []AddOnRate {
	return append([]AddOnRate(nil), s.tables.AddOnRates...)
}

// Links returns the external links shown next to the tables.
func (s *Static) Links() Links {
	return s.tables.Links
}

// Table returns a single table by name, for serving over HTTP.
func Table(p Provider, name string) (any, error) {
	switch name {
	case TableInterestRates:
		return p.InterestRates(), nil
	case TableSpecialRates:
		return p.SpecialRates(), nil
	case TableDepositProtection:
		return p.Tables().DepositProtection, nil
	case TableApprovalAuthorities:
		return p.ApprovalAuthorities(""), nil
	case TableRTIRatios:
		return p.RTIRatios(), nil
	case TableAddOnRates:
		return p.AddOnRates(), nil
	case TableLinks:
		return p.Links(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTable, name)
}
