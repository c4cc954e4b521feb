package filter

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/hareinweed/ipview/internal/record"
)

func tcpRecord(srcPort, destPort uint16) record.Record {
	return record.Record{
		Time:            time.Date(2024, 3, 5, 12, 30, 45, 123456000, time.Local),
		SrcIP:           netip.MustParseAddr("192.168.1.10"),
		SrcPort:         record.U16(srcPort),
		DestIP:          netip.MustParseAddr("10.0.0.2"),
		DestPort:        record.U16(destPort),
		Len:             1500,
		IPPayloadLen:    record.U16(1480),
		TransProto:      record.TCP,
		TransPayloadLen: record.U16(1460),
		AppProto:        record.AppProtocolFromPorts(srcPort, destPort),
	}
}

// bareRecord has no transport header: no ports, no payload lengths.
func bareRecord() record.Record {
	return record.Record{
		Time:       time.Date(2024, 3, 5, 12, 30, 46, 0, time.Local),
		Len:        48,
		TransProto: record.TransProtocolFromCode(200),
		AppProto:   record.AppUnknown,
	}
}

func mustCompile(t *testing.T, input string) Pred {
	t.Helper()
	p, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile(%q): %v", input, err)
	}
	return p
}

func TestCompileSimpleComparison(t *testing.T) {
	p := mustCompile(t, "src_port == 80")
	cmp, ok := p.(*Compare)
	if !ok {
		t.Fatalf("expected *Compare, got %T", p)
	}
	if cmp.Field != FieldSrcPort || cmp.Op != OpEq || cmp.Lit.U16 != 80 {
		t.Fatalf("unexpected node: %+v", cmp)
	}
}

func TestLocalizedAliases(t *testing.T) {
	pairs := [][2]string{
		{"time >= 2024-03-05", "时间 >= 2024-03-05"},
		{"src_ip == 192.168.1.10", "源IP == 192.168.1.10"},
		{"src_port == 80", "源端口 == 80"},
		{"dest_ip != 10.0.0.2", "目的IP != 10.0.0.2"},
		{"dest_port > 1024", "目的端口 > 1024"},
		{"len >= 1000", "IP分组长度 >= 1000"},
		{"ip_payload_len < 500", "IP数据长度 < 500"},
		{"trans_proto == TCP", "传输层协议 == TCP"},
		{"trans_payload_len <= 1460", "报文段数据长度 <= 1460"},
		{"app_proto == DNS", "应用层协议 == DNS"},
	}
	r := tcpRecord(443, 51000)
	for _, pair := range pairs {
		en := mustCompile(t, pair[0])
		zh := mustCompile(t, pair[1])
		if Eval(en, &r) != Eval(zh, &r) {
			t.Errorf("aliases disagree: %q vs %q", pair[0], pair[1])
		}
	}
}

func TestSecondaryAliases(t *testing.T) {
	for _, input := range []string{"trans_protocol == UDP", "app_protocol == HTTP"} {
		mustCompile(t, input)
	}
}

func TestParensAndNot(t *testing.T) {
	r := tcpRecord(443, 51000)
	tests := []struct {
		input string
		want  bool
	}{
		{"(src_port == 443)", true},
		{"((src_port == 443))", true},
		{"!(src_port == 443)", false},
		{"! (src_port == 80)", true},
		{"src_port == 443 && dest_port == 51000", true},
		{"src_port == 443 && dest_port == 80", false},
		{"src_port == 80 || dest_port == 51000", true},
		{"src_port == 80 || dest_port == 80", false},
		// && binds tighter than ||
		{"src_port == 80 && dest_port == 80 || trans_proto == TCP", true},
		{"(src_port == 80) || (dest_port == 443) || (dest_port == 51000)", true},
	}
	for _, tt := range tests {
		p := mustCompile(t, tt.input)
		if got := Eval(p, &r); got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWholeInputMustBeConsumed(t *testing.T) {
	for _, input := range []string{
		"src_port == 80 extra",
		"src_port == 80)",
		"(src_port == 80",
		"src_port == 80 &&",
		"",
		"   ",
		"&& src_port == 80",
	} {
		if _, err := Compile(input); err == nil {
			t.Errorf("Compile(%q) should fail", input)
		}
	}
}

func TestFieldOperatorValidation(t *testing.T) {
	// Identity-typed fields reject ordering operators.
	for _, input := range []string{
		"src_ip > 10.0.0.1",
		"dest_ip <= 10.0.0.1",
		"trans_proto >= TCP",
		"app_proto < DNS",
	} {
		_, err := Compile(input)
		var unsupported *UnsupportedOperatorError
		if !errors.As(err, &unsupported) {
			t.Errorf("Compile(%q) error = %v, want UnsupportedOperatorError", input, err)
		}
	}

	// Ordered fields accept the full operator set.
	for _, input := range []string{
		"time > 2024-03-05", "src_port >= 80", "dest_port < 1024",
		"len <= 1500", "ip_payload_len > 0", "trans_payload_len >= 1",
	} {
		mustCompile(t, input)
	}
}

func TestUnsupportedOperatorNamesFieldAndOperator(t *testing.T) {
	_, err := Compile("源IP > 10.0.0.1")
	var unsupported *UnsupportedOperatorError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedOperatorError", err)
	}
	if unsupported.Field != "源IP" || unsupported.Op != ">" {
		t.Errorf("diagnostic = %+v, want the offending alias and operator", unsupported)
	}
}

func TestInvalidField(t *testing.T) {
	_, err := Compile("bogus == 80")
	var invalid *InvalidFieldError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidFieldError", err)
	}
	if invalid.Name != "bogus" {
		t.Errorf("Name = %q, want %q", invalid.Name, "bogus")
	}
}

func TestInvalidOperator(t *testing.T) {
	_, err := Compile("src_port =? 80")
	var invalid *InvalidOperatorError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidOperatorError", err)
	}
}

func TestInvalidLiterals(t *testing.T) {
	for _, input := range []string{
		"src_ip == 192.168.1",
		"src_ip == 192.168.1.2.3",
		"src_port == 70000",
		"src_port == abc",
		"trans_proto == tcp",
		"app_proto == QUIC",
		"time == 2024-13-41",
	} {
		_, err := Compile(input)
		var invalid *InvalidLiteralError
		if !errors.As(err, &invalid) {
			t.Errorf("Compile(%q) error = %v, want InvalidLiteralError", input, err)
		}
	}
}

func TestLengthLiteralSaturates(t *testing.T) {
	// Oversized length literals clamp to 65535 instead of failing.
	p := mustCompile(t, "len == 70000")
	cmp := p.(*Compare)
	if cmp.Lit.U16 != 65535 {
		t.Fatalf("length literal = %d, want 65535", cmp.Lit.U16)
	}
	r := tcpRecord(443, 51000)
	r.Len = 65535
	if !Eval(p, &r) {
		t.Errorf("len == 70000 should match a 65535-length record")
	}
}

func TestTimeLiteralForms(t *testing.T) {
	for _, input := range []string{
		"time >= 2024-03-05",
		"time >= 2024-3-5",
		"time >= 2024-03-05 12:30:45",
		"time >= 2024-03-05 12:30:45.123456",
	} {
		mustCompile(t, input)
	}
}

func TestTimeDisplayRoundTrip(t *testing.T) {
	r := tcpRecord(443, 51000)
	p := mustCompile(t, "time == "+r.Time.Format(record.TimeLayout))
	if !Eval(p, &r) {
		t.Fatalf("displayed timestamp should re-parse to an equal literal")
	}
	later := r
	later.Time = r.Time.Add(time.Microsecond)
	if Eval(p, &later) {
		t.Errorf("timestamp equality should be exact")
	}
}

func TestUnknownTransProtoMatchesAnyCode(t *testing.T) {
	p := mustCompile(t, "trans_proto == Unknown")
	for _, code := range []uint8{143, 200, 255} {
		r := bareRecord()
		r.TransProto = record.TransProtocolFromCode(code)
		if !Eval(p, &r) {
			t.Errorf("code %d should match trans_proto == Unknown", code)
		}
	}
	r := tcpRecord(443, 51000)
	if Eval(p, &r) {
		t.Errorf("TCP record should not match trans_proto == Unknown")
	}
}

func TestAbsentFieldComparisons(t *testing.T) {
	r := bareRecord()
	tests := []struct {
		input string
		want  bool
	}{
		{"src_port == 80", false},
		{"src_port != 80", true},
		{"src_port > 0", false},
		{"src_port >= 0", false},
		// An absent value sorts below every present literal.
		{"src_port < 1", true},
		{"src_port <= 0", true},
		{"src_ip == 192.168.1.10", false},
		{"src_ip != 192.168.1.10", true},
	}
	for _, tt := range tests {
		p := mustCompile(t, tt.input)
		if got := Eval(p, &r); got != tt.want {
			t.Errorf("Eval(%q) on portless record = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// probe counts evaluations so tests can observe evaluation order.
type probe struct {
	ret   bool
	calls int
}

func (p *probe) eval(*record.Record) bool {
	p.calls++
	return p.ret
}

func TestAndShortCircuits(t *testing.T) {
	left := &probe{ret: false}
	right := &probe{ret: true}
	r := bareRecord()
	if Eval(&And{L: left, R: right}, &r) {
		t.Fatalf("false && _ should be false")
	}
	if right.calls != 0 {
		t.Errorf("And must not evaluate the right operand when the left is false")
	}
}

func TestOrEvaluatesBothOperands(t *testing.T) {
	left := &probe{ret: true}
	right := &probe{ret: false}
	r := bareRecord()
	if !Eval(&Or{L: left, R: right}, &r) {
		t.Fatalf("true || _ should be true")
	}
	if right.calls != 1 {
		t.Errorf("Or must evaluate both operands, right evaluated %d times", right.calls)
	}
}

func TestFieldValueMatchesAndMismatches(t *testing.T) {
	r := tcpRecord(443, 51000)
	p := mustCompile(t, "dest_port == 51000")
	if !Eval(p, &r) {
		t.Fatalf("matching dest_port should evaluate true")
	}
	other := tcpRecord(443, 51001)
	if Eval(p, &other) {
		t.Errorf("mismatching dest_port should evaluate false")
	}
}
