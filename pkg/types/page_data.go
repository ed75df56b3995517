package types

import "time"

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Message string
	Error   string
	Email   string
}

type RegisterPageData struct {
	BasePageData
	Email       string
	Error       string
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email   string
	Error   string
	Message string
}

// SubcontractorCard is one traffic-light row on the dashboard. Status
// fields are pre-rendered strings so the template stays dumb.
type SubcontractorCard struct {
	ID            string
	Name          string
	Trade         string
	Phone         string
	ExpiryDisplay string
	StatusID      string
	StatusLabel   string
	StatusClass   string
	DaysUntil     int
	HasDays       bool
}

type DashboardPageData struct {
	BasePageData
	Notice        string
	Error         string
	TenantID      string
	WindowDays    int
	WindowOptions []int
	StatusFilter  string
	Cards         []SubcontractorCard
	SafeCount     int
	WarningCount  int
	ExpiredCount  int
	MissingCount  int
	HasRows       bool
}

type ImportPageData struct {
	BasePageData
	Error string
}

// ImportColumnOption is one header in the mapping dropdowns.
type ImportColumnOption struct {
	Index    int
	Header   string
	Selected bool
}

type ImportMappingPageData struct {
	BasePageData
	UploadKey    string
	FileName     string
	RowCount     int
	NameColumns  []ImportColumnOption
	DateColumns  []ImportColumnOption
	TradeColumns []ImportColumnOption
	PhoneColumns []ImportColumnOption
	Error        string
}

type ImportResultPageData struct {
	BasePageData
	FileName          string
	Imported          int
	SkippedDuplicates int
	SkippedBlank      int
	Incomplete        int
	Error             string
}

type DocumentView struct {
	ID         string
	FileName   string
	PublicURL  string
	UploadedAt time.Time
}

type SubcontractorDetailPageData struct {
	BasePageData
	Subcontractor *Subcontractor
	Trade         string
	Phone         string
	ExpiryValue   string
	StatusLabel   string
	StatusClass   string
	Documents     []DocumentView
	Notice        string
	Error         string
	CanExtract    bool
}
