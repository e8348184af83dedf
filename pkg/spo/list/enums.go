package list

// enumValue is one member of a SharePoint enumeration.
type enumValue struct {
	name  string
	value int
}

type enum []enumValue

func (e enum) lookup(name string) (int, bool) {
	for _, v := range e {
		if v.name == name {
			return v.value, true
		}
	}
	return 0, false
}

func (e enum) names() []string {
	out := make([]string, len(e))
	for i, v := range e {
		out[i] = v.name
	}
	return out
}

// listTemplateTypes mirrors Microsoft.SharePoint.Client.ListTemplateType.
var listTemplateTypes = enum{
	{"InvalidType", -1},
	{"NoListTemplate", 0},
	{"GenericList", 100},
	{"DocumentLibrary", 101},
	{"Survey", 102},
	{"Links", 103},
	{"Announcements", 104},
	{"Contacts", 105},
	{"Events", 106},
	{"Tasks", 107},
	{"DiscussionBoard", 108},
	{"PictureLibrary", 109},
	{"DataSources", 110},
	{"WebTemplateCatalog", 111},
	{"UserInformation", 112},
	{"WebPartCatalog", 113},
	{"ListTemplateCatalog", 114},
	{"XMLForm", 115},
	{"MasterPageCatalog", 116},
	{"NoCodeWorkflows", 117},
	{"WorkflowProcess", 118},
	{"WebPageLibrary", 119},
	{"CustomGrid", 120},
	{"SolutionCatalog", 121},
	{"NoCodePublic", 122},
	{"ThemeCatalog", 123},
	{"DesignCatalog", 124},
	{"AppDataCatalog", 125},
	{"DataConnectionLibrary", 130},
	{"WorkflowHistory", 140},
	{"GanttTasks", 150},
	{"HelpLibrary", 151},
	{"AccessRequest", 160},
	{"TasksWithTimelineAndHierarchy", 171},
	{"MaintenanceLogs", 175},
	{"Meetings", 200},
	{"Agenda", 201},
	{"MeetingUser", 202},
	{"Decision", 204},
	{"MeetingObjective", 207},
	{"TextBox", 210},
	{"ThingsToBring", 211},
	{"HomePageLibrary", 212},
	{"Posts", 301},
	{"Comments", 302},
	{"Categories", 303},
	{"Facility", 402},
	{"Whereabouts", 403},
	{"CallTrack", 404},
	{"Circulation", 405},
	{"Timecard", 420},
	{"Holidays", 421},
	{"IMEDic", 499},
	{"ExternalList", 600},
	{"MySiteDocumentLibrary", 700},
	{"IssueTracking", 1100},
	{"AdminTasks", 1200},
	{"HealthRules", 1220},
	{"HealthReports", 1221},
	{"DeveloperSiteDraftApps", 1230},
}

var directions = enum{
	{"NONE", 0},
	{"LTR", 1},
	{"RTL", 2},
}

var draftVisibilityTypes = enum{
	{"Reader", 0},
	{"Author", 1},
	{"Approver", 2},
}

var listExperiences = enum{
	{"Auto", 0},
	{"NewExperience", 1},
	{"ClassicExperience", 2},
}

// BaseTemplates lists the accepted --baseTemplate values for shell completion.
func BaseTemplates() []string { return listTemplateTypes.names() }

// Directions lists the accepted --direction values for shell completion.
func Directions() []string { return directions.names() }
