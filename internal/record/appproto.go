package record

// AppProtocol is the application-layer protocol of a record, classified
// from well-known transport ports.
type AppProtocol uint8

const (
	AppUnknown AppProtocol = iota
	AppFTP
	AppSSH
	AppTelnet
	AppSMTP
	AppDNS
	AppDHCP
	AppHTTP
	AppPOP3
	AppNNTP
	AppNTP
	AppIMAP
	AppSNMP
	AppIRC
	AppHTTPS
)

var appProtoNames = map[AppProtocol]string{
	AppFTP:     "FTP",
	AppSSH:     "SSH",
	AppTelnet:  "Telnet",
	AppSMTP:    "SMTP",
	AppDNS:     "DNS",
	AppDHCP:    "DHCP",
	AppHTTP:    "HTTP",
	AppPOP3:    "POP3",
	AppNNTP:    "NNTP",
	AppNTP:     "NTP",
	AppIMAP:    "IMAP",
	AppSNMP:    "SNMP",
	AppIRC:     "IRC",
	AppHTTPS:   "HTTPS",
	AppUnknown: "Unknown",
}

func (p AppProtocol) String() string {
	if name, ok := appProtoNames[p]; ok {
		return name
	}
	return "Unknown"
}

// ParseAppProtocol parses a case-sensitive application protocol name.
func ParseAppProtocol(s string) (AppProtocol, error) {
	for p, name := range appProtoNames {
		if name == s {
			return p, nil
		}
	}
	return AppUnknown, ErrUnknownProtocolName
}

// wellKnownPorts maps assigned ports to application protocols. FTP covers
// both the data (20) and control (21) ports, DHCP both server (67) and
// client (68).
var wellKnownPorts = map[uint16]AppProtocol{
	20:  AppFTP,
	21:  AppFTP,
	22:  AppSSH,
	23:  AppTelnet,
	25:  AppSMTP,
	53:  AppDNS,
	67:  AppDHCP,
	68:  AppDHCP,
	80:  AppHTTP,
	110: AppPOP3,
	119: AppNNTP,
	123: AppNTP,
	143: AppIMAP,
	161: AppSNMP,
	194: AppIRC,
	443: AppHTTPS,
}

// AppProtocolFromPorts classifies an application protocol from a packet's
// port pair. The source port wins when both are well known.
func AppProtocolFromPorts(src, dest uint16) AppProtocol {
	if p, ok := wellKnownPorts[src]; ok {
		return p
	}
	if p, ok := wellKnownPorts[dest]; ok {
		return p
	}
	return AppUnknown
}
