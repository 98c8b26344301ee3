package domain

// Sample records shared by tests and the offline demo source.

func LukeSkywalker() Person {
	return Person{
		Name:      "Luke Skywalker",
		BirthYear: "19BBY",
		EyeColor:  "blue",
		Gender:    "male",
		HairColor: "blond",
		Height:    "172",
		Mass:      "77",
		SkinColor: "fair",
		Homeworld: "https://swapi.dev/api/planets/1/",
		Films: []string{
			"https://swapi.dev/api/films/1/",
			"https://swapi.dev/api/films/2/",
			"https://swapi.dev/api/films/3/",
			"https://swapi.dev/api/films/6/",
		},
		Species: []string{},
		Starships: []string{
			"https://swapi.dev/api/starships/12/",
			"https://swapi.dev/api/starships/22/",
		},
		Vehicles: []string{
			"https://swapi.dev/api/vehicles/14/",
			"https://swapi.dev/api/vehicles/30/",
		},
		URL: "https://swapi.dev/api/people/1/",
	}
}

func LeiaOrgana() Person {
	return Person{
		Name:      "Leia Organa",
		BirthYear: "19BBY",
		EyeColor:  "brown",
		Gender:    "female",
		HairColor: "brown",
		Height:    "150",
		Mass:      "49",
		SkinColor: "light",
		Homeworld: "https://swapi.dev/api/planets/2/",
		Films: []string{
			"https://swapi.dev/api/films/1/",
			"https://swapi.dev/api/films/2/",
		},
		Species:   []string{},
		Starships: []string{},
		Vehicles: []string{
			"https://swapi.dev/api/vehicles/30/",
		},
		URL: "https://swapi.dev/api/people/5/",
	}
}

func JabbaDesilijicTiure() Person {
	return Person{
		Name:      "Jabba Desilijic Tiure",
		BirthYear: "600BBY",
		EyeColor:  "orange",
		Gender:    "hermaphrodite",
		HairColor: "n/a",
		Height:    "175",
		Mass:      "1,358",
		SkinColor: "green-tan, brown",
		Homeworld: "https://swapi.dev/api/planets/24/",
		Films: []string{
			"https://swapi.dev/api/films/1/",
			"https://swapi.dev/api/films/3/",
		},
		Species:   []string{"https://swapi.dev/api/species/5/"},
		Starships: []string{},
		Vehicles:  []string{},
		URL:       "https://swapi.dev/api/people/16/",
	}
}
