// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// SiteName is shown in page titles and the header.
const SiteName = "Corkboard"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn    bool
	IsSystemAdmin bool
	UserName      string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	name, _, signedIn := authz.UserCtx(r)

	return BaseVM{
		SiteName:      SiteName,
		IsLoggedIn:    signedIn,
		IsSystemAdmin: authz.IsSystemAdmin(r),
		UserName:      name,
		Title:         title,
		BackURL:       httpnav.ResolveBackURL(r, backDefault),
		CurrentPath:   httpnav.CurrentPath(r),
	}
}
