package mindmap

import (
	"time"
)

// SeedDocument builds the illustrative mind map written the first time a
// store is opened with nothing in it.
func SeedDocument(now time.Time, newID IDGenerator) *Document {
	ts := NewTimestamp(now)
	node := func(x, y float64) Node {
		return Node{ID: newID(), Position: Position{X: x, Y: y}, CreatedAt: ts, UpdatedAt: ts}
	}
	day := func(y int, m time.Month, d int) Timestamp {
		return NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}

	mdd := Topic{
		Node:                node(200, 100),
		Title:               "Major Depressive Disorder",
		Description:         stringPtr("Unipolar depression, treatment-resistant depression, and related mood disorders"),
		Category:            "Mood Disorders",
		Color:               "#3B82F6",
		FlashcardCount:      25,
		CompletedFlashcards: 18,
		Resources: []Resource{
			{Title: "DSM-5-TR Criteria", URL: "#", Type: "reference"},
			{Title: "Treatment Guidelines", URL: "#", Type: "guideline"},
		},
	}
	schizophrenia := Topic{
		Node:                node(-200, 150),
		Title:               "Schizophrenia Spectrum",
		Description:         stringPtr("Schizophrenia, brief psychotic disorder, and delusional disorders"),
		Category:            "Psychotic Disorders",
		Color:               "#DC2626",
		FlashcardCount:      30,
		CompletedFlashcards: 22,
		Resources: []Resource{
			{Title: "Antipsychotic Guidelines", URL: "#", Type: "guideline"},
		},
	}
	anxiety := Topic{
		Node:                node(0, -150),
		Title:               "Anxiety Disorders",
		Description:         stringPtr("GAD, panic disorder, phobias, and anxiety management"),
		Category:            "Anxiety Disorders",
		Color:               "#059669",
		FlashcardCount:      20,
		CompletedFlashcards: 15,
		Resources:           []Resource{},
	}

	caseOne := Case{
		Node:                  node(300, 200),
		CaseID:                "CASE-001",
		EncounterDate:         day(2024, time.March, 15),
		PrimaryDiagnosis:      "Major Depressive Disorder, Severe",
		SecondaryDiagnoses:    []string{"Generalized Anxiety Disorder"},
		Age:                   intPtr(34),
		Gender:                stringPtr("Female"),
		ChiefComplaint:        "I can't get out of bed anymore",
		HistoryPresentIllness: stringPtr("34-year-old female with 3-month history of worsening depression"),
		MedicalHistory:        stringPtr("Hypertension, no prior psychiatric history"),
		MentalStatusExam:      stringPtr("Depressed mood, restricted affect, no SI/HI"),
		AssessmentPlan:        stringPtr("Increase sertraline to 100mg, CBT referral"),
		Notes:                 stringPtr("Good insight and judgment, strong family support"),
		Status:                CaseActive,
		LinkedTopics:          []string{mdd.ID},
		Medications: []Medication{
			{Name: "Sertraline", Dosage: "50mg", Frequency: "daily", Effect: "Partial response", DateAdded: "2024-03-15"},
			{Name: "Lisinopril", Dosage: "10mg", Frequency: "daily"},
		},
		Timeline: []TimelineEntry{
			{
				ID:        newID(),
				Type:      "Assessment",
				Timestamp: &ts,
				Content:   "Initial psychiatric evaluation completed",
				Author:    "Dr. Resident",
				Metadata:  Fields{"duration": "60 minutes"},
			},
		},
	}
	caseTwo := Case{
		Node:                  node(-300, 250),
		CaseID:                "CASE-002",
		EncounterDate:         day(2024, time.March, 10),
		PrimaryDiagnosis:      "Schizophrenia, Paranoid Type",
		SecondaryDiagnoses:    []string{},
		Age:                   intPtr(28),
		Gender:                stringPtr("Male"),
		ChiefComplaint:        "They're watching me through the cameras",
		HistoryPresentIllness: stringPtr("28-year-old male with 2-week history of paranoid delusions"),
		MentalStatusExam:      stringPtr("Paranoid delusions, auditory hallucinations present"),
		AssessmentPlan:        stringPtr("Increase risperidone, social work consultation"),
		Status:                CaseActive,
		LinkedTopics:          []string{schizophrenia.ID},
		Medications:           []Medication{{Name: "Risperidone", Dosage: "2mg", Frequency: "BID"}},
		Timeline:              []TimelineEntry{},
	}

	dueReview := day(2024, time.March, 20)
	dueFollowUp := day(2024, time.March, 22)
	tasks := []Task{
		{
			Node:          node(400, 50),
			Title:         "Review MDD treatment guidelines",
			Description:   stringPtr("Read updated APA guidelines for treatment-resistant depression"),
			Status:        TaskPending,
			Priority:      "high",
			DueDate:       &dueReview,
			LinkedTopicID: stringPtr(mdd.ID),
		},
		{
			Node:         node(450, 300),
			Title:        "Follow up with CASE-001",
			Description:  stringPtr("Check medication compliance and side effects"),
			Status:       TaskPending,
			Priority:     "medium",
			DueDate:      &dueFollowUp,
			LinkedCaseID: stringPtr(caseOne.ID),
		},
		{
			Node:          node(-400, 100),
			Title:         "Study antipsychotic mechanisms",
			Description:   stringPtr("Review D2 receptor blockade and side effect profiles"),
			Status:        TaskPending,
			Priority:      "medium",
			LinkedTopicID: stringPtr(schizophrenia.ID),
		},
	}

	literature := []Literature{
		{
			Node:         node(-100, 350),
			Title:        "Cumulative Meta-analysis of Antidepressant Efficacy",
			Authors:      stringPtr("Cipriani A, Furukawa TA, Salanti G, et al."),
			Publication:  stringPtr("The Lancet"),
			Year:         intPtr(2018),
			DOI:          stringPtr("10.1016/S0140-6736(17)32802-7"),
			Notes:        stringPtr("Network meta-analysis of 21 antidepressants for acute MDD"),
			LinkedTopics: []string{mdd.ID},
		},
	}

	connections := []Connection{
		{ID: "seed-edge-1", Source: mdd.ID, Target: caseOne.ID, SourceHandle: "bottom", TargetHandle: "top"},
		{ID: "seed-edge-2", Source: schizophrenia.ID, Target: caseTwo.ID, SourceHandle: "bottom", TargetHandle: "top"},
		{ID: "seed-edge-3", Source: mdd.ID, Target: literature[0].ID, SourceHandle: "left", TargetHandle: "right"},
	}

	return &Document{
		Topics:      []Topic{mdd, schizophrenia, anxiety},
		Cases:       []Case{caseOne, caseTwo},
		Tasks:       tasks,
		Literature:  literature,
		Connections: connections,
	}
}
