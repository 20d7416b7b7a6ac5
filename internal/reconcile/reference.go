package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
)

// ReferenceKind classifies what a payment description points at.
type ReferenceKind string

const (
	KindSale         ReferenceKind = "sale"
	KindServiceOrder ReferenceKind = "service_order"
	KindOther        ReferenceKind = "other"
)

// Reference is the transaction a payment description names. Code is only
// meaningful when Kind is not KindOther.
type Reference struct {
	Kind ReferenceKind
	Code int
}

// Key scopes the code by kind, so a sale and a service order sharing a number
// never collide.
func (r Reference) Key() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.Code)
}

// Descriptions are free text typed by the upstream system in Portuguese.
// The ordinal mark varies (º, ° or a plain o) and "serviço" sometimes loses
// its cedilla.
var (
	saleRef         = regexp.MustCompile(`(?i)venda de n[ºo°] (\d+)`)
	serviceOrderRef = regexp.MustCompile(`(?i)ordem de servi[çc]o de n[ºo°] (\d+)`)
)

// ExtractReference parses a payment description into a typed reference.
// The sale pattern is tried before the service-order pattern; anything
// matching neither is KindOther.
func ExtractReference(description string) Reference {
	if m := saleRef.FindStringSubmatch(description); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return Reference{Kind: KindSale, Code: code}
		}
	}
	if m := serviceOrderRef.FindStringSubmatch(description); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return Reference{Kind: KindServiceOrder, Code: code}
		}
	}
	return Reference{Kind: KindOther}
}
