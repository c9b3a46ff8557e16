package sikola

// Markup the portal is scraped with. When the portal changes its templates,
// this is the place to update.
const (
	// present on every page rendered for a logged in user, holds their display name
	SelectorWelcomeName = ".username-movil"
	// error banner shown on the login page
	SelectorAlert = ".alert"
	// page number list under the session catalogue, the last item is the page count
	SelectorPagination = ".pagination"
	// main content column of the session catalogue
	SelectorContent = "#cm-content"
	// one per session card in the catalogue
	SelectorCourseTitle = ".title"
	// inside a course title, the course name is in its title attribute
	SelectorCourseAnchor = "a"
	AttrCourseName       = "title"
)

const (
	DefaultBaseUrl     = "https://sikola.unhas.ac.id"
	DefaultLoginPath   = "/index.php"
	DefaultListingPath = "/main/auth/courses.php"
	DefaultPageLength  = 12
)

// login form fields
const (
	formFieldLogin    = "login"
	formFieldPassword = "password"
	formFieldToken    = "_qf__form-login"
)
