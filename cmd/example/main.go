// Command example walks through the core workflows of this module: Knuth-
// Bendix completion, Todd-Coxeter coset enumeration, and a Race between the
// two over the same presentation.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gokando-labs/fpsg/pkg/knuthbendix"
	"github.com/gokando-labs/fpsg/pkg/race"
	"github.com/gokando-labs/fpsg/pkg/toddcoxeter"
	"github.com/gokando-labs/fpsg/pkg/word"
)

func main() {
	fmt.Println("=== fpsg examples ===")
	fmt.Println()

	knuthBendixBasics()
	toddCoxeterBasics()
	raceBasics()
}

// knuthBendixBasics completes the free commutative pair (ba = ab) and
// queries normal forms and word equality.
func knuthBendixBasics() {
	fmt.Println("1. Knuth-Bendix completion:")

	alphabet, err := word.NewAlphabetFromString("ab")
	if err != nil {
		log.Fatal(err)
	}
	ba, _ := alphabet.ParseWord("ba")
	ab, _ := alphabet.ParseWord("ab")
	pres, err := word.New(alphabet, word.ShortLex{}, []word.Relation{{U: ba, V: ab}})
	if err != nil {
		log.Fatal(err)
	}

	kb, err := knuthbendix.New(pres, knuthbendix.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := kb.Run(); err != nil {
		log.Fatal(err)
	}

	bbaa, _ := alphabet.ParseWord("bbaa")
	nf, _ := kb.NormalForm(bbaa)
	fmt.Printf("   confluent=%v rules=%d normal_form(\"bbaa\")=%q\n", kb.Confluent(), len(kb.Rules()), nf.String(alphabet))
	fmt.Println()
}

// toddCoxeterBasics enumerates the Klein four-group presented by two
// involutions a, b with three relations, a(a)=1, b(b)=1, (ab)(ab)=1.
func toddCoxeterBasics() {
	fmt.Println("2. Todd-Coxeter coset enumeration:")

	alphabet, err := word.NewAlphabetFromString("ab")
	if err != nil {
		log.Fatal(err)
	}
	mustWord := func(s string) word.Word {
		w, err := alphabet.ParseWord(s)
		if err != nil {
			log.Fatal(err)
		}
		return w
	}
	empty := word.Word{}
	pres, err := word.New(alphabet, word.ShortLex{}, []word.Relation{
		{U: mustWord("aa"), V: empty},
		{U: mustWord("bb"), V: empty},
		{U: mustWord("abab"), V: empty},
	})
	if err != nil {
		log.Fatal(err)
	}

	tc, err := toddcoxeter.New(pres, toddcoxeter.TwoSided, nil, toddcoxeter.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := tc.Run(); err != nil {
		log.Fatal(err)
	}
	size, _ := tc.Size()
	fmt.Printf("   number_of_classes=%d\n", size)
	fmt.Println()
}

// raceBasics runs a KnuthBendix and a ToddCoxeter engine concurrently over
// the same presentation and reports the winner.
func raceBasics() {
	fmt.Println("3. Race:")

	alphabet, err := word.NewAlphabetFromString("ab")
	if err != nil {
		log.Fatal(err)
	}
	ba, _ := alphabet.ParseWord("ba")
	ab, _ := alphabet.ParseWord("ab")
	pres, err := word.New(alphabet, word.ShortLex{}, []word.Relation{{U: ba, V: ab}})
	if err != nil {
		log.Fatal(err)
	}

	kb, err := knuthbendix.New(pres, knuthbendix.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	tc, err := toddcoxeter.New(pres, toddcoxeter.TwoSided, nil, toddcoxeter.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	r := race.New()
	_ = r.AddRunner(kb)
	_ = r.AddRunner(tc)

	if err := r.RunFor(time.Second); err != nil {
		log.Fatal(err)
	}
	winner, _ := r.Winner()
	fmt.Printf("   winner=%s\n", winner.ID())
}
