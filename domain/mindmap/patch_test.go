package mindmap

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pgy3-backend/pkg/errors"
)

func TestTopicPatchMergesDeclaredAndOpenFields(t *testing.T) {
	doc := decodeFixture(t)
	e, ok := doc.Find(KindTopic, "t1")
	require.True(t, ok)

	patch, err := DecodePatch(KindTopic, []byte(`{
	  "title": "MDD",
	  "description": "Unipolar depression",
	  "position": {"x": 5, "y": 6},
	  "definition": null,
	  "psychotherapy_modalities": "<ul><li>CBT</li></ul>",
	  "id": "hijack",
	  "created_at": "2000-01-01"
	}`))
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, patch.ApplyTo(e, now))
	require.NoError(t, e.Validate())

	topic := doc.Topics[0]
	assert.Equal(t, "t1", topic.ID)
	assert.Equal(t, "MDD", topic.Title)
	assert.Equal(t, "Mood Disorders", topic.Category)
	require.NotNil(t, topic.Description)
	assert.Equal(t, "Unipolar depression", *topic.Description)
	assert.Equal(t, Position{X: 5, Y: 6}, topic.Position)
	assert.NotContains(t, topic.Extra, "definition")
	assert.Equal(t, "<ul><li>CBT</li></ul>", topic.Extra["psychotherapy_modalities"])
	assert.NotContains(t, topic.Extra, "id")
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 123456000, time.UTC), topic.CreatedAt.Time)
	assert.Equal(t, now, topic.UpdatedAt.Time)
}

func TestPatchNullClearsOptionalField(t *testing.T) {
	doc := decodeFixture(t)
	e, _ := doc.Find(KindTask, "k1")

	patch, err := DecodePatch(KindTask, []byte(`{"due_date": null, "linked_topic_id": null, "status": "completed"}`))
	require.NoError(t, err)
	require.NoError(t, patch.ApplyTo(e, time.Now()))

	task := doc.Tasks[0]
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.LinkedTopicID)
	assert.Equal(t, TaskCompleted, task.Status)
	assert.Equal(t, "high", task.Priority)
}

func TestPatchCanInvalidateEntity(t *testing.T) {
	doc := decodeFixture(t)
	e, _ := doc.Find(KindCase, "c1")

	patch, err := DecodePatch(KindCase, []byte(`{"encounter_date": null, "status": "closed"}`))
	require.NoError(t, err)
	require.NoError(t, patch.ApplyTo(e, time.Now()))

	err = e.Validate()
	require.Error(t, err)
	fields := apperrors.GetAppError(err).Fields()
	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"status", "encounter_date"}, names)
}

func TestPatchNullSequencesBecomeEmpty(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		id   string
		body string
		keys []string
	}{
		{"topic resources", KindTopic, "t1", `{"resources": null}`, []string{"resources"}},
		{"case sequences", KindCase, "c1",
			`{"timeline": null, "medications": null, "linked_topics": null, "secondary_diagnoses": null}`,
			[]string{"timeline", "medications", "linked_topics", "secondary_diagnoses"}},
		{"literature linked topics", KindLiterature, "l1", `{"linked_topics": null}`, []string{"linked_topics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeFixture(t)
			e, ok := doc.Find(tt.kind, tt.id)
			require.True(t, ok)

			patch, err := DecodePatch(tt.kind, []byte(tt.body))
			require.NoError(t, err)
			require.NoError(t, patch.ApplyTo(e, time.Now()))
			require.NoError(t, e.Validate())

			data, err := json.Marshal(e)
			require.NoError(t, err)
			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			for _, key := range tt.keys {
				assert.Equal(t, []any{}, raw[key], key)
			}
		})
	}
}

func TestCasePatchStructuresMedicationsAndKeepsTimelineOrder(t *testing.T) {
	doc := decodeFixture(t)
	e, _ := doc.Find(KindCase, "c1")

	patch, err := DecodePatch(KindCase, []byte(`{
	  "medications": ["Bupropion 150mg"],
	  "timeline": [
	    {"id": "e1", "type": "Assessment", "timestamp": "2024-03-15T10:00:00Z", "content": "Intake", "author": "Dr. A", "metadata": {"duration": 60, "flags": [true, null]}},
	    {"id": "e2", "type": "Medication", "timestamp": "2024-03-20T09:00:00Z", "content": "Started bupropion", "author": "Dr. A"}
	  ]
	}`))
	require.NoError(t, err)
	before := doc.Cases[0].Timeline[0]
	require.NoError(t, patch.ApplyTo(e, time.Now()))

	c := doc.Cases[0]
	require.Len(t, c.Medications, 1)
	assert.False(t, c.Medications[0].IsPlain())
	assert.Equal(t, "Bupropion 150mg", c.Medications[0].Name)

	require.Len(t, c.Timeline, 2)
	assert.Equal(t, before, c.Timeline[0])
	assert.Equal(t, "e2", c.Timeline[1].ID)
}

func TestDecodePatchRejectsWrongTypes(t *testing.T) {
	_, err := DecodePatch(KindLiterature, []byte(`{"year": "twenty"}`))
	assert.True(t, apperrors.IsValidation(err))

	_, err = DecodePatch(KindTopic, []byte(`[1, 2]`))
	assert.True(t, apperrors.IsValidation(err))

	_, err = DecodePatch(Kind("connections"), []byte(`{}`))
	assert.True(t, apperrors.IsValidation(err))
}

func TestPatchOnWrongKindFails(t *testing.T) {
	doc := decodeFixture(t)
	e, _ := doc.Find(KindTopic, "t1")

	err := TaskPatch{}.ApplyTo(e, time.Now())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestDecodeEntityAndPrepareNew(t *testing.T) {
	e, err := DecodeEntity(KindCase, []byte(`{
	  "case_id": "CASE-010", "encounter_date": "2024-04-01T09:30:00",
	  "primary_diagnosis": "Bipolar I", "chief_complaint": "Not sleeping",
	  "medications": ["Lithium 300mg"], "created_at": "1999-01-01T00:00:00Z"
	}`))
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, PrepareNew(e, now, func() string { return "new-id" }))

	c := e.(*Case)
	assert.Equal(t, "new-id", c.ID)
	assert.Equal(t, now, c.CreatedAt.Time)
	assert.Equal(t, now, c.UpdatedAt.Time)
	assert.Equal(t, CaseActive, c.Status)
	assert.False(t, c.Medications[0].IsPlain())

	_, err = DecodeEntity(KindTopic, []byte(`{"title": 1}`))
	assert.True(t, apperrors.IsValidation(err))

	missing, err := DecodeEntity(KindTopic, []byte(`{"title": "Only title"}`))
	require.NoError(t, err)
	assert.True(t, apperrors.IsValidation(PrepareNew(missing, now, NewID)))
}

func TestMedicationShapes(t *testing.T) {
	var meds []Medication
	require.NoError(t, json.Unmarshal([]byte(`["Sertraline 50mg", {"name": "Lithium", "dosage": "300mg", "custom": 1}]`), &meds))

	assert.Equal(t, PlainMedication("Sertraline 50mg"), meds[0])
	assert.Equal(t, "Lithium", meds[1].Name)
	assert.Equal(t, Fields{"custom": json.Number("1")}, meds[1].Extra)

	data, err := json.Marshal(meds)
	require.NoError(t, err)
	assert.JSONEq(t, `["Sertraline 50mg", {"name": "Lithium", "dosage": "300mg", "custom": 1}]`, string(data))

	var bad Medication
	assert.Error(t, json.Unmarshal([]byte(`null`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestParseMedicationFormat(t *testing.T) {
	f, err := ParseMedicationFormat("")
	require.NoError(t, err)
	assert.Equal(t, MedicationsPreserve, f)

	f, err = ParseMedicationFormat("structured")
	require.NoError(t, err)
	assert.Equal(t, MedicationsStructured, f)

	_, err = ParseMedicationFormat("csv")
	assert.Error(t, err)
}

func TestSeedDocumentIsValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := SeedDocument(now, NewID)

	require.NoError(t, doc.Validate())
	assert.NotEmpty(t, doc.Topics)
	assert.NotEmpty(t, doc.Cases)
	assert.NotEmpty(t, doc.Tasks)
	assert.NotEmpty(t, doc.Literature)

	for _, conn := range doc.Connections {
		_, fromTopic := doc.Find(KindTopic, conn.Source)
		assert.True(t, fromTopic, "connection %s source", conn.ID)
	}

	data, err := EncodeDocument(doc)
	require.NoError(t, err)
	again, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Counts(), again.Counts())
}
