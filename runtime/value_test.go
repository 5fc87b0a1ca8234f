package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_IntRoundTrip(t *testing.T) {
	v := FromI64(-42)
	assert.True(t, v.IsInt())
	assert.True(t, v.IsNumber())
	assert.Equal(t, int64(-42), v.AsI64())
	assert.Equal(t, float64(-42), v.AsFloat64())
}

func TestValue_FloatRoundTrip(t *testing.T) {
	v := FromF64(3.5)
	assert.True(t, v.IsF64())
	assert.True(t, v.IsNumber())
	assert.Equal(t, 3.5, v.AsF64())
	assert.Equal(t, 3.5, v.AsFloat64())
}

func TestValue_BoolCanonicalInstances(t *testing.T) {
	assert.True(t, FromBool(true).AsBool())
	assert.False(t, FromBool(false).AsBool())
	assert.Equal(t, TRUE, FromBool(true))
	assert.Equal(t, FALSE, FromBool(false))
}

func TestValue_Unit(t *testing.T) {
	assert.True(t, UNIT.IsUnit())
	assert.False(t, UNIT.IsHeapRef())
}

func TestValue_ImmediatesAreNotHeapRefs(t *testing.T) {
	for _, v := range []Value{FromI64(1), FromF64(1), TRUE, UNIT} {
		assert.False(t, v.IsHeapRef())
	}
}

func TestValue_HeapTagsAreHeapRefs(t *testing.T) {
	for _, v := range []Value{
		StrValue(1), ListValue(1), DictValue(1), SetValue(1),
		TupleValue(1), RangeValue(1), StructValue(1), EnumValue(1),
		FunctionValue(1), ModuleValue(1), ShapeValue(1), BuilderValue(1), FileValue(1),
	} {
		assert.True(t, v.IsHeapRef())
		assert.Equal(t, ObjectId(1), v.AsObjID())
	}
}

func TestValue_TypeName(t *testing.T) {
	assert.Equal(t, "Int", FromI64(1).TypeName())
	assert.Equal(t, "Float", FromF64(1).TypeName())
	assert.Equal(t, "Bool", TRUE.TypeName())
	assert.Equal(t, "Unit", UNIT.TypeName())
	assert.Equal(t, "Str", StrValue(0).TypeName())
	assert.Equal(t, "Dict", DictValue(0).TypeName())
}

func TestTag_StringUnknown(t *testing.T) {
	var bogus Tag = 255
	assert.Equal(t, "Unknown", bogus.String())
}

func TestValue_AsFloat64NonNumberDefaultsZero(t *testing.T) {
	assert.Equal(t, float64(0), UNIT.AsFloat64())
}
