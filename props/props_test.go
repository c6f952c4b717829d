package props

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSortedKeys(t *testing.T) {
	v := Map(map[string]Value{
		"name":  Str("ssr"),
		"count": Num(3),
		"tags":  List(Str("a"), Boolean(true), NullValue()),
		"inner": Map(map[string]Value{"z": Num(1.5), "a": Num(-2)}),
	})
	assert.Equal(t, `{"count":3,"inner":{"a":-2,"z":1.5},"name":"ssr","tags":["a",true,null]}`, v.JSON())
}

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"name": "not the computer", "list": [1, "2", false], "none": null}`))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, Object, v.Kind())
	name, has := v.Get("name")
	assert.True(t, has)
	s, ok := name.Str()
	assert.True(t, ok)
	assert.Equal(t, "not the computer", s)

	list, _ := v.Get("list")
	assert.Equal(t, Array, list.Kind())
	assert.Len(t, list.Items(), 3)
	n, ok := list.Items()[0].Num()
	assert.True(t, ok)
	assert.Equal(t, float64(1), n)

	none, has := v.Get("none")
	assert.True(t, has)
	assert.True(t, none.IsNull())

	_, err = Parse([]byte(`{"broken": `))
	assert.NotNil(t, err)
}

func TestOfStruct(t *testing.T) {
	type user struct {
		Name string   `json:"name"`
		Age  int      `json:"age"`
		Tags []string `json:"tags"`
	}

	v, err := Of(user{Name: "Ada", Age: 36, Tags: []string{"math"}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, `{"age":36,"name":"Ada","tags":["math"]}`, v.JSON())

	v, err = Of(map[string]int{"b": 2, "a": 1})
	assert.Nil(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, v.JSON())

	_, err = Of(make(chan int))
	assert.NotNil(t, err)
}

func TestInterface(t *testing.T) {
	v := Map(map[string]Value{"name": Str("ssr"), "list": List(Num(1), Boolean(false))})
	assert.Equal(t, map[string]interface{}{
		"name": "ssr",
		"list": []interface{}{float64(1), false},
	}, v.Interface())
	assert.Nil(t, NullValue().Interface())
}

func TestEqualAndUnmarshal(t *testing.T) {
	a, _ := Parse([]byte(`{"a": 1, "b": [true]}`))
	b, _ := Parse([]byte(`{"b": [true], "a": 1.0}`))
	assert.True(t, a.Equal(b))

	var c Value
	err := c.UnmarshalJSON([]byte(`"text"`))
	assert.Nil(t, err)
	assert.Equal(t, String, c.Kind())
	assert.False(t, a.Equal(c))
}

func TestInvalidNumber(t *testing.T) {
	_, err := Num(math.NaN()).MarshalJSON()
	assert.NotNil(t, err)
	assert.Equal(t, "null", List(Num(math.Inf(1))).JSON())
}
