package heuristics

import (
	"path/filepath"
	"strings"
)

// Area is a Magento configuration scope.
type Area string

const (
	AreaGlobal     Area = "global"
	AreaFrontend   Area = "frontend"
	AreaAdminhtml  Area = "adminhtml"
	AreaWebapiRest Area = "webapi_rest"
	AreaWebapiSoap Area = "webapi_soap"
	AreaCrontab    Area = "crontab"
	AreaGraphQL    Area = "graphql"
)

var areaSegments = []struct {
	segment string
	area    Area
}{
	{"/etc/frontend/", AreaFrontend},
	{"/etc/adminhtml/", AreaAdminhtml},
	{"/etc/webapi_rest/", AreaWebapiRest},
	{"/etc/webapi_soap/", AreaWebapiSoap},
	{"/etc/crontab/", AreaCrontab},
	{"/etc/graphql/", AreaGraphQL},
}

var (
	adminhtmlMarkers = []string{`\adminhtml\`, `\admin\`, `\ui\component\`, `\ui\dataprovider\`}
	frontendMarkers  = []string{
		`\frontend\`,
		`\customer\controller\`, `\checkout\controller\`, `\catalog\controller\`, `\cart\controller\`,
		`\controller\customer\`, `\controller\checkout\`, `\controller\catalog\`, `\controller\cart\`,
	}
)

// DIArea classifies a di.xml path by its first /etc/<area>/ segment.
func DIArea(path string) Area {
	p := filepath.ToSlash(path)
	for _, candidate := range areaSegments {
		if strings.Contains(p, candidate.segment) {
			return candidate.area
		}
	}
	return AreaGlobal
}

// SuggestAreaForClass guesses the area a class is meant for from its name.
func SuggestAreaForClass(fqcn string) (Area, bool) {
	name := `\` + strings.ToLower(normalizeFQCN(fqcn)) + `\`

	if ContainsAny(name, adminhtmlMarkers...) {
		return AreaAdminhtml, true
	}
	if strings.Contains(name, `\block\`) || ContainsAny(name, frontendMarkers...) {
		return AreaFrontend, true
	}
	return "", false
}
