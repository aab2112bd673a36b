package testutil

import (
	"strconv"
	"strings"
)

// Delimiters used by every fixture: element *, repetition ^, component :,
// segment terminator ~.

// ISAFixture is a 106 byte interchange control header with the standard
// delimiter positions populated.
const ISAFixture = "ISA*00*          *00*          *ZZ*890069730      *ZZ*154663145      *200929*1705*^*00501*000000001*0*T*:~"

// GSFixture pairs with ISAFixture: functional code HC, version 005010X222A1.
const GSFixture = "GS*HC*890069730*154663145*20200929*1705*1*X*005010X222A1~"

// envelope close for one transaction set.
const trailerFixture = "GE*1*1~IEA*1*000000001~"

// Simple270 is a minimal eligibility inquiry transmission on one line,
// exactly 21 segments including the envelope. It exercises delimiter
// extraction and tokenization without any claim semantics.
const Simple270 = ISAFixture +
	"GS*HS*890069730*154663145*20200929*1705*1*X*005010X279A1~" +
	"ST*270*0001*005010X279A1~" +
	"BHT*0022*13*10001234*20200929*1319~" +
	"HL*1**20*1~" +
	"NM1*PR*2*PAYER C*****PI*12345~" +
	"HL*2*1*21*1~" +
	"NM1*1P*1*DOE*JOHN****XX*1467857193~" +
	"REF*4A*000111222~" +
	"N3*123 MAIN ST.*SUITE 42~" +
	"N4*SAN MATEO*CA*94401~" +
	"HL*3*2*22*0~" +
	"TRN*1*930000000000*9800000004*PD~" +
	"NM1*IL*1*DOE*JOHN****MI*00000000001~" +
	"REF*6P*0123456789~" +
	"DMG*D8*19700101~" +
	"DTP*291*D8*20200101~" +
	"EQ*30~" +
	"SE*17*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

// Simple270MultiLine is Simple270 with a newline after every segment
// terminator, matching how trading partners commonly format files.
func Simple270MultiLine() string {
	return strings.ReplaceAll(Simple270, "~", "~\n")
}

// Minimal837 is a single-claim professional claim transmission: one billing
// provider, one subscriber, one claim with one service line, 21 segments
// including the envelope. The claim total matches the single service line
// charge so it passes validation as written.
const Minimal837 = ISAFixture +
	GSFixture +
	"ST*837*0001*005010X222A1~" +
	"BHT*0019*00*000000001*20200929*1705*CH~" +
	"NM1*41*2*SUBMITTER INC*****46*123456789~" +
	"PER*IC*JANE SMITH*TE*5551234567~" +
	"NM1*40*2*RECEIVER CORP*****46*987654321~" +
	"HL*1**20*1~" +
	"NM1*85*2*GOOD CLINIC*****XX*1122334455~" +
	"N3*400 HEALTH WAY~" +
	"N4*SAN MATEO*CA*94401~" +
	"HL*2*1*22*0~" +
	"SBR*P*18*******CI~" +
	"NM1*IL*1*DOE*JOHN****MI*00000000001~" +
	"NM1*PR*2*PAYER C*****PI*12345~" +
	"CLM*PATIENT1*100.00***11:B:1*Y*A*Y*Y~" +
	"LX*1~" +
	"SV1*HC:99213*100.00*UN*1***1~" +
	"SE*15*0001~" +
	trailerFixture

// Dual837 packs two reconciled single-claim transaction sets back to back
// in one functional group, so the segment after the first SE is the second
// set's ST rather than the group trailer.
var Dual837 = ISAFixture +
	GSFixture +
	transactionSet("0001") +
	transactionSet("0002") +
	"GE*2*1~" +
	"IEA*1*000000001~"

// transactionSet renders one reconciled single-claim ST-SE envelope with
// the given control number.
func transactionSet(control string) string {
	return "ST*837*" + control + "*005010X222A1~" +
		"BHT*0019*00*000000001*20200929*1705*CH~" +
		"NM1*41*2*SUBMITTER INC*****46*123456789~" +
		"PER*IC*JANE SMITH*TE*5551234567~" +
		"NM1*40*2*RECEIVER CORP*****46*987654321~" +
		"HL*1**20*1~" +
		"NM1*85*2*GOOD CLINIC*****XX*1122334455~" +
		"N3*400 HEALTH WAY~" +
		"N4*SAN MATEO*CA*94401~" +
		"HL*2*1*22*0~" +
		"SBR*P*18*******CI~" +
		"NM1*IL*1*DOE*JOHN****MI*00000000001~" +
		"NM1*PR*2*PAYER C*****PI*12345~" +
		"CLM*PATIENT1*100.00***11:B:1*Y*A*Y*Y~" +
		"LX*1~" +
		"SV1*HC:99213*100.00*UN*1***1~" +
		"SE*15*" + control + "~"
}

// Claim837 builds a single-claim 837 transmission whose claim total and
// service line charges are supplied by the caller. Each entry in charges
// becomes one service line; total becomes CLM02. Callers control whether
// the amounts reconcile.
func Claim837(total string, charges ...string) string {
	var b strings.Builder
	b.WriteString(ISAFixture)
	b.WriteString(GSFixture)
	b.WriteString("ST*837*0001*005010X222A1~")
	b.WriteString("BHT*0019*00*000000001*20200929*1705*CH~")
	b.WriteString("NM1*41*2*SUBMITTER INC*****46*123456789~")
	b.WriteString("PER*IC*JANE SMITH*TE*5551234567~")
	b.WriteString("NM1*40*2*RECEIVER CORP*****46*987654321~")
	b.WriteString("HL*1**20*1~")
	b.WriteString("NM1*85*2*GOOD CLINIC*****XX*1122334455~")
	b.WriteString("N3*400 HEALTH WAY~")
	b.WriteString("N4*SAN MATEO*CA*94401~")
	b.WriteString("HL*2*1*22*0~")
	b.WriteString("SBR*P*18*******CI~")
	b.WriteString("NM1*IL*1*DOE*JOHN****MI*00000000001~")
	b.WriteString("NM1*PR*2*PAYER C*****PI*12345~")
	b.WriteString("CLM*PATIENT1*" + total + "***11:B:1*Y*A*Y*Y~")
	for i, charge := range charges {
		b.WriteString("LX*" + strconv.Itoa(i+1) + "~")
		b.WriteString("SV1*HC:99213*" + charge + "*UN*1***1~")
	}
	b.WriteString("SE*15*0001~")
	b.WriteString(trailerFixture)
	return b.String()
}
