package record

import (
	"errors"
	"fmt"
)

// TransProtocol identifies the network-layer protocol of a record. Code is
// the IANA protocol number; Named reports whether the code belongs to the
// closed set of recognized protocols. Unrecognized codes all display and
// filter as "Unknown", keeping the wrapped code only for display.
type TransProtocol struct {
	Code  uint8
	Named bool
}

// Named transport protocols referenced directly by the engine.
var (
	TCP = TransProtocol{Code: 6, Named: true}
	UDP = TransProtocol{Code: 17, Named: true}
)

// TransProtocolFromCode classifies a raw IANA protocol number.
func TransProtocolFromCode(code uint8) TransProtocol {
	_, ok := transProtoNames[code]
	return TransProtocol{Code: code, Named: ok}
}

// UnknownTransProtocol returns the canonical unrecognized protocol value.
func UnknownTransProtocol() TransProtocol {
	return TransProtocol{}
}

func (p TransProtocol) String() string {
	if !p.Named {
		return fmt.Sprintf("Unknown (%d)", p.Code)
	}
	return transProtoNames[p.Code]
}

// Name returns the protocol's display name, with all unrecognized codes
// collapsing to the bare "Unknown" category.
func (p TransProtocol) Name() string {
	if !p.Named {
		return "Unknown"
	}
	return transProtoNames[p.Code]
}

// Equal reports protocol equality as the filter sees it: named protocols
// compare by code, while any two unrecognized codes compare equal.
func (p TransProtocol) Equal(q TransProtocol) bool {
	if !p.Named && !q.Named {
		return true
	}
	return p == q
}

// ErrUnknownProtocolName is returned for names outside the closed set.
var ErrUnknownProtocolName = errors.New("invalid protocol name")

// ParseTransProtocol parses a case-sensitive protocol display name. The
// literal "Unknown" parses to the unrecognized category.
func ParseTransProtocol(s string) (TransProtocol, error) {
	if s == "Unknown" {
		return UnknownTransProtocol(), nil
	}
	code, ok := transProtoCodes[s]
	if !ok {
		return TransProtocol{}, ErrUnknownProtocolName
	}
	return TransProtocol{Code: code, Named: true}, nil
}

// transProtoNames maps IANA protocol numbers to display names. The set and
// spelling are fixed; filter literals must match exactly.
var transProtoNames = map[uint8]string{
	0:   "Hopopt",
	1:   "ICMP",
	2:   "Igmp",
	3:   "Ggp",
	4:   "IPv4",
	5:   "St",
	6:   "TCP",
	7:   "Cbt",
	8:   "Egp",
	9:   "Igp",
	10:  "BbnRccMon",
	11:  "NvpII",
	12:  "Pup",
	13:  "Argus",
	14:  "Emcon",
	15:  "Xnet",
	16:  "Chaos",
	17:  "UDP",
	18:  "Mux",
	19:  "DcnMeas",
	20:  "Hmp",
	21:  "Prm",
	22:  "XnsIdp",
	23:  "Trunk1",
	24:  "Trunk2",
	25:  "Leaf1",
	26:  "Leaf2",
	27:  "Rdp",
	28:  "Irtp",
	29:  "IsoTp4",
	30:  "Netblt",
	31:  "MfeNsp",
	32:  "MeritInp",
	33:  "Dccp",
	34:  "ThreePc",
	35:  "Idpr",
	36:  "Xtp",
	37:  "Ddp",
	38:  "IdprCmtp",
	39:  "TpPlusPlus",
	40:  "Il",
	41:  "IPv6",
	42:  "Sdrp",
	43:  "IPv6Route",
	44:  "IPv6Frag",
	45:  "Idrp",
	46:  "Rsvp",
	47:  "Gre",
	48:  "Dsr",
	49:  "Bna",
	50:  "Esp",
	51:  "Ah",
	52:  "INlsp",
	53:  "Swipe",
	54:  "Narp",
	55:  "Mobile",
	56:  "Tlsp",
	57:  "Skip",
	58:  "IPv6ICMP",
	59:  "IPv6NoNxt",
	60:  "IPv6Opts",
	61:  "HostInternal",
	62:  "Cftp",
	63:  "LocalNetwork",
	64:  "SatExpak",
	65:  "Kryptolan",
	66:  "Rvd",
	67:  "Ippc",
	68:  "DistributedFs",
	69:  "SatMon",
	70:  "Visa",
	71:  "Ipcv",
	72:  "Cpnx",
	73:  "Cphb",
	74:  "Wsn",
	75:  "Pvp",
	76:  "BrSatMon",
	77:  "SunNd",
	78:  "WbMon",
	79:  "WbExpak",
	80:  "IsoIp",
	81:  "Vmtp",
	82:  "SecureVmtp",
	83:  "Vines",
	84:  "TtpOrIptm",
	85:  "NsfnetIgp",
	86:  "Dgp",
	87:  "Tcf",
	88:  "Eigrp",
	89:  "OspfigP",
	90:  "SpriteRpc",
	91:  "Larp",
	92:  "Mtp",
	93:  "Ax25",
	94:  "IpIp",
	95:  "Micp",
	96:  "SccSp",
	97:  "Etherip",
	98:  "Encap",
	99:  "PrivEncryption",
	100: "Gmtp",
	101: "Ifmp",
	102: "Pnni",
	103: "Pim",
	104: "Aris",
	105: "Scps",
	106: "Qnx",
	107: "AN",
	108: "IpComp",
	109: "Snp",
	110: "CompaqPeer",
	111: "IpxInIp",
	112: "Vrrp",
	113: "Pgm",
	114: "ZeroHop",
	115: "L2tp",
	116: "Ddx",
	117: "Iatp",
	118: "Stp",
	119: "Srp",
	120: "Uti",
	121: "Smp",
	122: "Sm",
	123: "Ptp",
	124: "IsisOverIpv4",
	125: "Fire",
	126: "Crtp",
	127: "Crudp",
	128: "Sscopmce",
	129: "Iplt",
	130: "Sps",
	131: "Pipe",
	132: "Sctp",
	133: "Fc",
	134: "RsvpE2eIgnore",
	135: "MobilityHeader",
	136: "UdpLite",
	137: "MplsInIp",
	138: "Manet",
	139: "Hip",
	140: "Shim6",
	141: "Wesp",
	142: "Rohc",
	253: "Test1",
	254: "Test2",
}

var transProtoCodes = func() map[string]uint8 {
	m := make(map[string]uint8, len(transProtoNames))
	for code, name := range transProtoNames {
		m[name] = code
	}
	return m
}()
