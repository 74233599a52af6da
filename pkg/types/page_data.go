package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserName        string
	IsOrganization  bool
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Email string
}

type RegisterIndividualPageData struct {
	BasePageData
	FullName    string
	Email       string
	FieldErrors map[string]string
}

type RegisterOrganizationPageData struct {
	BasePageData
	OrgName     string
	Email       string
	Phone       string
	Website     string
	RegNumber   string
	FieldErrors map[string]string
}

type VolunteerDashboardPageData struct {
	BasePageData
	Volunteer   *VolunteerProfile
	Requests    map[string]*HelpRequest
	Active      []AssignmentView
	Completed   []AssignmentView
	UrgentCount int
}

type OrgDashboardPageData struct {
	BasePageData
	Org       *OrganizationProfile
	Open      map[string]*HelpRequest
	Assigned  map[string]*HelpRequest
	Completed map[string]*HelpRequest
	Archived  map[string]*HelpRequest
}

type RequestDetailPageData struct {
	BasePageData
	Request   *HelpRequest
	Requester *OrganizationProfile
}

type VolunteerProfilePageData struct {
	BasePageData
	Volunteer *VolunteerProfile
	Active    []AssignmentView
	Completed []AssignmentView
}

type OrgProfilePageData struct {
	BasePageData
	Org *OrganizationProfile
}
