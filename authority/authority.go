// Package authority implements the certificate-authority enumeration and the
// direct-trust keystore contract described for signature verification: eight
// named authorities, each the sole key into a keystore of certificate files.
package authority

import "fmt"

// Authority is one of the eight named signing authorities in a snapshot.
// The authority tag is the sole key into the keystore; it is never
// hash-derived or inferred from payload content.
type Authority struct {
	name string
}

// String returns the keystore filename stem for this authority, e.g.
// "control_component_1".
func (a Authority) String() string {
	return a.name
}

var (
	Canton        = Authority{"canton"}
	SdmConfig     = Authority{"sdm_config"}
	SdmTally      = Authority{"sdm_tally"}
	VotingServer  = Authority{"voting_server"}
	controlComp1  = Authority{"control_component_1"}
	controlComp2  = Authority{"control_component_2"}
	controlComp3  = Authority{"control_component_3"}
	controlComp4  = Authority{"control_component_4"}
	controlByNode = map[int]Authority{
		1: controlComp1,
		2: controlComp2,
		3: controlComp3,
		4: controlComp4,
	}
)

// ControlComponent returns the authority for control component node (1..4).
func ControlComponent(node int) (Authority, error) {
	a, ok := controlByNode[node]
	if !ok {
		return Authority{}, fmt.Errorf("control component node id out of range: %d", node)
	}
	return a, nil
}

// All lists the eight named authorities, in the order the keystore
// enumeration tests against.
func All() []Authority {
	return []Authority{Canton, SdmConfig, SdmTally, VotingServer, controlComp1, controlComp2, controlComp3, controlComp4}
}
