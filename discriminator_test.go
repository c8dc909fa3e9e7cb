package iceaxe

import (
	sqldriver "database/sql/driver"
	"testing"
)

// AnimalType is an enum-like wrapper whose underlying representation is the
// string the database stores.
type AnimalType string

func (a AnimalType) Value() (sqldriver.Value, error) {
	return string(a), nil
}

type Animal struct {
	ID   int        `column:"id,primary_key"`
	Type AnimalType `column:"type,discriminator"`
	Name string     `column:"name"`
	Age  int        `column:"age"`
}

type Dog struct {
	ID    int        `column:"id,primary_key"`
	Type  AnimalType `column:"type,discriminator"`
	Name  string     `column:"name"`
	Age   int        `column:"age"`
	Breed string     `column:"breed"`
}

type Cat struct {
	ID        int        `column:"id,primary_key"`
	Type      AnimalType `column:"type,discriminator"`
	Name      string     `column:"name"`
	Age       int        `column:"age"`
	LivesLeft int        `column:"lives_left"`
}

var (
	animalInfo = MustRegister[Animal]()
	dogInfo    = MustRegister[Dog]()
	catInfo    = MustRegister[Cat]()
)

func init() {
	if err := animalInfo.RegisterSubtype("dog", dogInfo); err != nil {
		panic(err)
	}
	if err := animalInfo.RegisterSubtype(AnimalType("cat"), catInfo); err != nil {
		panic(err)
	}
}

func animalRow(typ any, name string) RawRow {
	return RawRow{
		"animal_id":   int64(1),
		"animal_type": typ,
		"animal_name": name,
		"animal_age":  int64(4),
	}
}

func TestDiscriminatorDispatch(t *testing.T) {
	tests := []struct {
		name string
		typ  any
		want string
	}{
		{name: "registered value", typ: "dog", want: "*iceaxe.Dog"},
		{name: "unregistered value falls back to base", typ: "fish", want: "*iceaxe.Animal"},
		{name: "null value falls back to base", typ: nil, want: "*iceaxe.Animal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Hydrate([]RawRow{animalRow(tt.typ, "Rex")}, []any{SelectModel(animalInfo)})
			if err != nil {
				t.Fatal(err)
			}
			var got string
			switch out[0].(type) {
			case *Dog:
				got = "*iceaxe.Dog"
			case *Cat:
				got = "*iceaxe.Cat"
			case *Animal:
				got = "*iceaxe.Animal"
			default:
				t.Fatalf("unexpected instance type %T", out[0])
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDiscriminatorUnwrapsBeforeRawValue(t *testing.T) {
	// "dog" is registered under its primitive; a wrapped row value must
	// resolve through the unwrapped representation.
	out, err := Hydrate([]RawRow{animalRow(AnimalType("dog"), "Rex")}, []any{SelectModel(animalInfo)})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out[0].(*Dog); !ok {
		t.Fatalf("expected *Dog, got %T", out[0])
	}
}

func TestDiscriminatorFallsBackToWrappedValue(t *testing.T) {
	// "cat" is registered under the wrapper itself, so the first lookup
	// with the unwrapped primitive misses and the second must hit.
	out, err := Hydrate([]RawRow{animalRow(AnimalType("cat"), "Mau")}, []any{SelectModel(animalInfo)})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out[0].(*Cat); !ok {
		t.Fatalf("expected *Cat, got %T", out[0])
	}
}

func TestDiscriminatorFieldsCarryOver(t *testing.T) {
	out, err := Hydrate([]RawRow{animalRow("dog", "Buddy")}, []any{SelectModel(animalInfo)})
	if err != nil {
		t.Fatal(err)
	}
	dog := out[0].(*Dog)
	if dog.Name != "Buddy" || dog.Age != 4 || dog.Type != "dog" {
		t.Fatalf("unexpected instance: %+v", dog)
	}
	if dog.Breed != "" {
		t.Fatalf("breed was never selected, expected zero value, got %q", dog.Breed)
	}
}

func TestRegisterSubtypeRequiresDiscriminator(t *testing.T) {
	if err := userInfo.RegisterSubtype("x", dogInfo); err == nil {
		t.Fatal("expected registration without a discriminator column to fail")
	}
}

func TestRegisterSubtypeDuplicate(t *testing.T) {
	if err := animalInfo.RegisterSubtype("dog", dogInfo); err == nil {
		t.Fatal("expected duplicate discriminator value to fail")
	}
}
