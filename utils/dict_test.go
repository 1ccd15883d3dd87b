package utils

import (
	"fmt"
	"testing"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/triage/vtesting/goldie"
)

func TestDictUtils(t *testing.T) {
	var nil_dict *ordereddict.Dict

	res := ordereddict.NewDict().
		Set("Inner", ordereddict.NewDict().
			Set("X", 1).
			Set("Y", "String")).
		Set("Inner2", "String").
		Set("Map", map[string]interface{}{
			"Z": "Zed",
			"Nested": map[string]interface{}{
				"N": 2,
			},
		}).
		Set("NilInner", nil_dict).
		Set("Number", "0x10")

	golden := ""
	for _, k := range []string{
		"NotExist",
		"Inner.X", // Really an int
		"Inner.Y",
		"Inner2",
		"Inner2.Foo", // Not really a dict
		"Map.Z",
		"Map.Nested.N",
		"NilInner.X", // Should not crash!
	} {
		golden += fmt.Sprintf("%v -> '%v'\n", k, GetString(res, k))
	}

	for _, k := range []string{"Inner.X", "Number", "Inner.Y"} {
		value, ok := GetInt64(res, k)
		golden += fmt.Sprintf("int %v -> %v %v\n", k, value, ok)
	}

	goldie.Assert(t, "TestDictUtils", []byte(golden))
}
