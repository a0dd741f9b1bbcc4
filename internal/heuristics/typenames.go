package heuristics

import (
	"strings"
)

// thirdPartyVendors are extension vendors whose code is reported on less aggressively.
var thirdPartyVendors = []string{
	`Aheadworks\`,
	`Amasty\`,
	`Amazon\`,
	`Dotdigitalgroup\`,
	`Fooman\`,
	`Klarna\`,
	`Mageplaza\`,
	`Mirasvit\`,
	`MSP\`,
	`PayPal\Braintree\`,
	`Smile\`,
	`Vertex\`,
	`Webkul\`,
	`Yotpo\`,
}

// IsFrameworkClass reports whether fqcn belongs to the Magento namespace.
func IsFrameworkClass(fqcn string) bool {
	return strings.HasPrefix(normalizeFQCN(fqcn), `Magento\`)
}

// IsThirdPartyVendor reports whether fqcn belongs to a known extension vendor.
func IsThirdPartyVendor(fqcn string) bool {
	name := normalizeFQCN(fqcn)
	for _, prefix := range thirdPartyVendors {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func IsCollection(fqcn string) bool {
	return HasSuffix(fqcn, "Collection")
}

func IsCollectionFactory(fqcn string) bool {
	return HasSuffix(fqcn, "CollectionFactory")
}

func IsRepository(fqcn string) bool {
	return HasSuffix(fqcn, "Repository", "RepositoryInterface")
}

// IsResourceModel matches classes under a ResourceModel namespace that are not collections.
func IsResourceModel(fqcn string) bool {
	return ContainsAny(fqcn, `\ResourceModel\`, `\Model\Resource\`) && !IsCollection(fqcn) && !IsCollectionFactory(fqcn)
}

// APIInterfaceFor guesses the service contract of a model by name: Model\ becomes
// Api\Data\ and Interface is appended. ok is false when fqcn has no Model\ segment.
func APIInterfaceFor(fqcn string) (string, bool) {
	name := normalizeFQCN(fqcn)
	if !strings.Contains(name, `\Model\`) {
		return "", false
	}
	return strings.Replace(name, `\Model\`, `\Api\Data\`, 1) + "Interface", true
}

// ImplementsAPIInterface reports whether the class implements an interface from an Api
// namespace, and which one. Classes indexed in the session are inspected through their
// implements clause and their ancestors; unknown classes fall back to APIInterfaceFor.
func (s *Session) ImplementsAPIInterface(fqcn string) (bool, string) {
	candidates := append([]string{normalizeFQCN(fqcn)}, s.Ancestors(fqcn)...)

	inspected := false
	for _, class := range candidates {
		path, ok := s.FileOf(class)
		if !ok {
			continue
		}
		content := ReadSource(path)
		if content == "" {
			continue
		}
		inspected = true
		for _, iface := range Implements(content) {
			if strings.Contains(iface, `\Api\`) {
				return true, iface
			}
		}
	}
	if inspected {
		return false, ""
	}
	iface, ok := APIInterfaceFor(fqcn)
	return ok, iface
}

// HasSuffix reports whether name ends with any suffix.
func HasSuffix(name string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether name contains any needle.
func ContainsAny(name string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(name, needle) {
			return true
		}
	}
	return false
}
