package grandjeu

// AdventistCatalog is the single-phase demo game: each level is completed by
// its secret code alone.
var AdventistCatalog = Catalog{
	{
		ID:          1,
		Title:       "Première Mission",
		Description: "Trouvez le code secret caché dans le temple adventiste",
		Code:        "ADVENT2025",
		Points:      100,
		Hint:        "Pensez à l'année actuelle et au nom de notre église",
	},
	{
		ID:          2,
		Title:       "Les Pionniers",
		Description: "Découvrez le code lié aux fondateurs de l'église adventiste",
		Code:        "ELLEN1827",
		Points:      150,
		Hint:        "Le nom d'une prophétesse et son année de naissance",
	},
	{
		ID:          3,
		Title:       "Les Commandements",
		Description: "Le code se trouve dans les dix commandements",
		Code:        "SABBAT7",
		Points:      200,
		Hint:        "Le jour saint et son numéro dans la semaine",
	},
	{
		ID:          4,
		Title:       "Mission Finale",
		Description: "La dernière épreuve pour les vrais aventuriers",
		Code:        "MARANATHA",
		Points:      300,
		Hint:        "Une expression araméenne que nous utilisons souvent",
	},
}

// PathfinderCatalog is the two-phase game: the code found on site reveals a
// question about the club.
var PathfinderCatalog = Catalog{
	{ID: 1, Title: "Fanamiana", Code: "FANEVA", Points: DefaultPoints, Theme: "from-yellow-700 to-yellow-800",
		Description: "Lazao ny anaran’ny lokon’ny lobaka Class B amin’ny fanamian'ny mpisava lalana ?", Answer: "Khaki"},
	{ID: 2, Title: "Loko Saina", Code: "COULEUR", Points: DefaultPoints, Theme: "from-blue-500 to-indigo-600",
		Description: "Inona ny loko voalohany hita amin'ny zoro ambony havia amin'ny sainan'ny Mpisava Lalana ?", Answer: "Manga"},
	{ID: 3, Title: "Sary Famantarana ny mpisava lalana", Code: "ENDRIKA", Points: DefaultPoints, Theme: "from-purple-500 to-purple-600",
		Description: "Inona ny fitaovam-piarovana hita eo afovoan'ny Sary Famantarana ny mpisava lalana ?", Answer: "Ampinga"},
	{ID: 4, Title: "Hira Faneva", Code: "FANEVA", Points: DefaultPoints, Theme: "from-orange-500 to-orange-600",
		Description: "Iza no nanoratra ny hira fanevan'ny Mpisava Lalana tamin'ny 1948 ?", Answer: "Henry Bergh"},
	{ID: 5, Title: "Hevitry ny Loko", Code: "LAFOVIDY", Points: DefaultPoints, Theme: "from-yellow-500 to-yellow-600",
		Description: "Inona no asehon’ny loko ranom-bolamena amin'ny sainan'ny Mpisava Lalana ?", Answer: "Finoana"},
	{ID: 6, Title: "Kilasy Pandrosoana", Code: "KILASY", Points: DefaultPoints, Theme: "from-teal-500 to-teal-600",
		Description: "Firy ny mari-pandrosoana misy ao amin'ny Mpisava Lalana ?", Answer: "6"},
	{ID: 7, Title: "Tantara", Code: "HISTORY", Points: DefaultPoints, Theme: "from-pink-500 to-pink-600",
		Description: "Tamin'ny taona firy no natsangana tamin'ny fomba ofisialy ny Club Pathfinder ?", Answer: "1950"},
	{ID: 8, Title: "Hevitry ny Loko", Code: "LOKO50", Points: DefaultPoints, Theme: "from-gray-200 to-gray-400",
		Description: "Inona no asehon’ny loko fotsy amin'ny sainan'ny Mpisava Lalana ?", Answer: "Fahadiovana"},
	{ID: 9, Title: "Sainan'ny Mpisava", Code: "SAINA4", Points: DefaultPoints, Theme: "from-stone-500 to-stone-600",
		Description: "Firy metatra ny sakany amin'ny sainan'ny Mpisava Lalana ?", Answer: "1"},
	{ID: 10, Title: "Hevitry ny Loko", Code: "LOKO10", Points: DefaultPoints, Theme: "from-red-500 to-red-600",
		Description: "Inona no asehon’ny loko mena amin'ny sainan'ny Mpisava Lalana ?", Answer: "Rà"},
	{ID: 11, Title: "Sary Famantarana ny mpisava lalana", Code: "LOGO16", Points: DefaultPoints, Theme: "from-green-500 to-green-600",
		Description: "Inona ny fitaovam-piadiana hita eo afovoan'ny Sary famantarana ny mpisava lalana ?", Answer: "Sabatra"},
	{ID: 12, Title: "Tantara", Code: "CLASSP", Points: DefaultPoints, Theme: "from-amber-500 to-amber-600",
		Description: "Tamin’ny taona firy no natomboka voalohany ny kilasim-pandrosoana Pathfinder ?", Answer: "1922"},
}

// CatalogByName resolves a seed catalog name. "none" and "" yield nil.
func CatalogByName(name string) (Catalog, bool) {
	switch name {
	case "adventist":
		return AdventistCatalog, true
	case "pathfinder":
		return PathfinderCatalog, true
	case "", "none":
		return nil, true
	}
	return nil, false
}

// DemoTeam is a seed roster entry.
type DemoTeam struct {
	Name     string
	Password string
}

// DemoTeams are the patrols created on an empty store.
var DemoTeams = []DemoTeam{
	{Name: "Les Pionniers", Password: "pioneer123"},
	{Name: "Les Conquistadors", Password: "conquest456"},
	{Name: "Les Aventuriers", Password: "adventure789"},
}
