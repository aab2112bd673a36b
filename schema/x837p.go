package schema

// Professional837 returns the root loop schema for the 837 health care
// claim: professional transaction.
//
// The hierarchy, segment membership, and repetition bounds follow the
// implementation guide's logical groupings:
//
//	Header (ST, BHT, REF)
//	  Loop 1000A Submitter Name
//	  Loop 1000B Receiver Name
//	  Loop 2000A Billing Provider
//	    Loop 2010AA Billing Provider Name
//	    Loop 2010AB Pay-to Provider Name
//	    Loop 2000B Subscriber
//	      Loop 2010BA Subscriber Name
//	      Loop 2010BB Account Holder Name
//	      Loop 2010BC Payer Name
//	      Loop 2010BD Responsible Party Name
//	      Loop 2300  Claim
//	      Loop 2000C Patient
//	        Loop 2010CA Patient Name
//	        Loop 2300  Claim
//	Footer (SE)
//
// with the claim loop nesting:
//
//	Loop 2300 Claim
//	  Loop 2305  Home Health Care Plan
//	  Loop 2310A-2310E Provider Names
//	  Loop 2320  Other Subscriber (2330A, 2330B)
//	  Loop 2400  Service Line (2410, 2420A-2420C, 2430)
//
// Segment names reused across levels (HL, NM1, SBR) are disambiguated by
// start-segment field conditions: HL03 level codes and NM101 entity
// identifier codes.
func Professional837() *LoopSchema {
	claim := claimLoop()

	patient := &LoopSchema{
		ID:    "2000C",
		Name:  "Patient Hierarchical Level",
		Start: StartSegment{Name: "HL", Conditions: []Condition{{Field: 3, Values: []string{"23"}}}},
		Segments: []SegmentRule{
			required("HL"),
			required("PAT"),
		},
		Loops: []LoopRule{
			{Loop: patientName(), Required: true, Repeats: Once},
			{Loop: claim, Repeats: Occurrence{Min: 0, Max: 100}},
		},
	}

	subscriber := &LoopSchema{
		ID:    "2000B",
		Name:  "Subscriber Hierarchical Level",
		Start: StartSegment{Name: "HL", Conditions: []Condition{{Field: 3, Values: []string{"22"}}}},
		Segments: []SegmentRule{
			required("HL"),
			required("SBR"),
		},
		Loops: []LoopRule{
			{Loop: subscriberName(), Required: true, Repeats: Once},
			{Loop: accountHolderName(), Repeats: Once},
			{Loop: payerName(), Required: true, Repeats: Once},
			{Loop: responsiblePartyName(), Repeats: Once},
			{Loop: claim, Repeats: Occurrence{Min: 0, Max: 100}},
			{Loop: patient, Repeats: Occurrence{Min: 0, Max: Unbounded}},
		},
	}

	billingProvider := &LoopSchema{
		ID:    "2000A",
		Name:  "Billing Provider Hierarchical Level",
		Start: StartSegment{Name: "HL", Conditions: []Condition{{Field: 3, Values: []string{"20"}}}},
		Segments: []SegmentRule{
			required("HL"),
			optional("PRV"),
			optional("CUR"),
		},
		Loops: []LoopRule{
			{Loop: billingProviderName(), Required: true, Repeats: Once},
			{Loop: payToProviderName(), Repeats: Once},
			{Loop: subscriber, Required: true, Repeats: Occurrence{Min: 1, Max: Unbounded}},
		},
	}

	header := &LoopSchema{
		ID:    "HEADER",
		Name:  "Transaction Set Header",
		Start: StartSegment{Name: "ST"},
		Segments: []SegmentRule{
			required("ST"),
			required("BHT"),
			optionalRepeated("REF", 3),
		},
	}

	footer := &LoopSchema{
		ID:    "FOOTER",
		Name:  "Transaction Set Trailer",
		Start: StartSegment{Name: "SE"},
		Segments: []SegmentRule{
			required("SE"),
		},
	}

	return &LoopSchema{
		ID:    "837",
		Name:  "Health Care Claim: Professional",
		Start: StartSegment{Name: "ST"},
		Loops: []LoopRule{
			{Loop: header, Required: true, Repeats: Once},
			{Loop: submitterName(), Required: true, Repeats: Once},
			{Loop: receiverName(), Required: true, Repeats: Once},
			{Loop: billingProvider, Required: true, Repeats: Occurrence{Min: 1, Max: Unbounded}},
			{Loop: footer, Required: true, Repeats: Once},
		},
	}
}

func submitterName() *LoopSchema {
	return &LoopSchema{
		ID:    "1000A",
		Name:  "Submitter Name",
		Start: nm1Start("41"),
		Segments: []SegmentRule{
			required("NM1"),
			repeated("PER", 1, 2),
		},
	}
}

func receiverName() *LoopSchema {
	return &LoopSchema{
		ID:    "1000B",
		Name:  "Receiver Name",
		Start: nm1Start("40"),
		Segments: []SegmentRule{
			required("NM1"),
		},
	}
}

func billingProviderName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010AA",
		Name:  "Billing Provider Name",
		Start: nm1Start("85"),
		Segments: []SegmentRule{
			required("NM1"),
			required("N3"),
			required("N4"),
			optionalRepeated("REF", 16),
			optionalRepeated("PER", 2),
		},
	}
}

func payToProviderName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010AB",
		Name:  "Pay-to Provider Name",
		Start: nm1Start("87"),
		Segments: []SegmentRule{
			required("NM1"),
			required("N3"),
			required("N4"),
			optionalRepeated("REF", 5),
		},
	}
}

func subscriberName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010BA",
		Name:  "Subscriber Name",
		Start: nm1Start("IL"),
		Segments: []SegmentRule{
			required("NM1"),
			optional("N3"),
			optional("N4"),
			optional("DMG"),
			optionalRepeated("REF", 5),
		},
	}
}

func accountHolderName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010BB",
		Name:  "Credit/Debit Card Account Holder Name",
		Start: nm1Start("AB"),
		Segments: []SegmentRule{
			required("NM1"),
			optionalRepeated("REF", 2),
		},
	}
}

func payerName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010BC",
		Name:  "Payer Name",
		Start: nm1Start("PR"),
		Segments: []SegmentRule{
			required("NM1"),
			optional("N3"),
			optional("N4"),
			optionalRepeated("REF", 5),
		},
	}
}

func responsiblePartyName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010BD",
		Name:  "Responsible Party Name",
		Start: nm1Start("QD"),
		Segments: []SegmentRule{
			required("NM1"),
			optional("N3"),
			optional("N4"),
		},
	}
}

func patientName() *LoopSchema {
	return &LoopSchema{
		ID:    "2010CA",
		Name:  "Patient Name",
		Start: nm1Start("QC"),
		Segments: []SegmentRule{
			required("NM1"),
			required("N3"),
			required("N4"),
			required("DMG"),
			optionalRepeated("REF", 6),
		},
	}
}

func claimLoop() *LoopSchema {
	return &LoopSchema{
		ID:    "2300",
		Name:  "Claim Information",
		Start: StartSegment{Name: "CLM"},
		Segments: []SegmentRule{
			required("CLM"),
			optionalRepeated("DTP", 15),
			optional("CL1"),
			optionalRepeated("PWK", 10),
			optional("CN1"),
			optionalRepeated("AMT", 5),
			optionalRepeated("REF", 15),
			optionalRepeated("K3", 10),
			optional("NTE"),
			optional("CR6"),
			optionalRepeated("CRC", 8),
			optionalRepeated("HI", 20),
			optionalRepeated("QTY", 4),
			optional("HCP"),
		},
		Loops: []LoopRule{
			{Loop: homeHealthPlan(), Repeats: Once},
			{Loop: claimProvider("2310A", "Referring Provider Name", "DN", "P3"), Repeats: Once},
			{Loop: claimProvider("2310B", "Rendering Provider Name", "82"), Repeats: Once},
			{Loop: claimProvider("2310C", "Service Facility Location", "77"), Repeats: Once},
			{Loop: claimProvider("2310E", "Supervising Provider Name", "DQ"), Repeats: Once},
			{Loop: otherSubscriber(), Repeats: Occurrence{Min: 0, Max: 10}},
			{Loop: serviceLine(), Required: true, Repeats: Occurrence{Min: 1, Max: 50}},
		},
	}
}

func homeHealthPlan() *LoopSchema {
	return &LoopSchema{
		ID:    "2305",
		Name:  "Home Health Care Plan Information",
		Start: StartSegment{Name: "CR7"},
		Segments: []SegmentRule{
			required("CR7"),
			optionalRepeated("HSD", 12),
		},
	}
}

// claimProvider builds the 2310-series provider name loops, which share a
// shape and differ only in the NM1 entity identifier codes that open them.
func claimProvider(id, name string, codes ...string) *LoopSchema {
	return &LoopSchema{
		ID:    id,
		Name:  name,
		Start: StartSegment{Name: "NM1", Conditions: []Condition{{Field: 1, Values: codes}}},
		Segments: []SegmentRule{
			required("NM1"),
			optional("PRV"),
			optional("N3"),
			optional("N4"),
			optionalRepeated("REF", 5),
		},
	}
}

func otherSubscriber() *LoopSchema {
	return &LoopSchema{
		ID:    "2320",
		Name:  "Other Subscriber Information",
		Start: StartSegment{Name: "SBR"},
		Segments: []SegmentRule{
			required("SBR"),
			optionalRepeated("CAS", 5),
			optionalRepeated("AMT", 8),
			optional("DMG"),
			optional("OI"),
			optional("MOA"),
		},
		Loops: []LoopRule{
			{Loop: otherSubscriberName(), Repeats: Once},
			{Loop: otherPayerName(), Repeats: Once},
		},
	}
}

func otherSubscriberName() *LoopSchema {
	return &LoopSchema{
		ID:    "2330A",
		Name:  "Other Subscriber Name",
		Start: nm1Start("IL"),
		Segments: []SegmentRule{
			required("NM1"),
			optional("N3"),
			optional("N4"),
			optionalRepeated("REF", 3),
		},
	}
}

func otherPayerName() *LoopSchema {
	return &LoopSchema{
		ID:    "2330B",
		Name:  "Other Payer Name",
		Start: nm1Start("PR"),
		Segments: []SegmentRule{
			required("NM1"),
			optional("N3"),
			optional("N4"),
			optional("DTP"),
			optionalRepeated("REF", 2),
		},
	}
}

func serviceLine() *LoopSchema {
	return &LoopSchema{
		ID:    "2400",
		Name:  "Service Line",
		Start: StartSegment{Name: "LX"},
		Segments: []SegmentRule{
			required("LX"),
			required("SV1"),
			optionalRepeated("PWK", 10),
			optionalRepeated("DTP", 15),
			optionalRepeated("AMT", 2),
			optional("HCP"),
		},
		Loops: []LoopRule{
			{Loop: drugIdentification(), Repeats: Once},
			{Loop: lineProvider("2420A", "Rendering Provider Name", "82"), Repeats: Once},
			{Loop: lineProvider("2420B", "Purchased Service Provider Name", "QB"), Repeats: Once},
			{Loop: lineProvider("2420C", "Service Facility Location", "77"), Repeats: Once},
			{Loop: lineAdjudication(), Repeats: Occurrence{Min: 0, Max: 15}},
		},
	}
}

func drugIdentification() *LoopSchema {
	return &LoopSchema{
		ID:    "2410",
		Name:  "Drug Identification",
		Start: StartSegment{Name: "LIN"},
		Segments: []SegmentRule{
			required("LIN"),
			required("CTP"),
			optional("REF"),
		},
	}
}

func lineProvider(id, name string, codes ...string) *LoopSchema {
	return &LoopSchema{
		ID:    id,
		Name:  name,
		Start: StartSegment{Name: "NM1", Conditions: []Condition{{Field: 1, Values: codes}}},
		Segments: []SegmentRule{
			required("NM1"),
			optionalRepeated("REF", 5),
		},
	}
}

func lineAdjudication() *LoopSchema {
	return &LoopSchema{
		ID:    "2430",
		Name:  "Line Adjudication Information",
		Start: StartSegment{Name: "SVD"},
		Segments: []SegmentRule{
			required("SVD"),
			optionalRepeated("CAS", 5),
			required("DTP"),
		},
	}
}

// nm1Start matches an NM1 segment whose NM101 entity identifier code equals
// one of the given codes.
func nm1Start(codes ...string) StartSegment {
	return StartSegment{Name: "NM1", Conditions: []Condition{{Field: 1, Values: codes}}}
}
