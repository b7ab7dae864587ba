package lexicon

import (
	"strings"
	"unicode"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

// GuessGender classifies a display name by its first word. Names that are not
// in the table, handles, and brand-like names come back as unknown.
func GuessGender(displayName string) model.Gender {
	first := firstName(displayName)
	if len(first) < 2 {
		return model.GenderUnknown
	}
	if _, ok := maleNames[first]; ok {
		return model.GenderMale
	}
	if _, ok := femaleNames[first]; ok {
		return model.GenderFemale
	}
	return model.GenderUnknown
}

func firstName(displayName string) string {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(displayName), "@"))
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
	})
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if !unicode.IsLetter(r) {
			break
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

var maleNames = set(
	"aaron", "adam", "adrian", "ahmed", "alan", "alex", "alexander", "ali", "andre", "andrew",
	"andrzej", "anthony", "antonio", "arthur", "ben", "benjamin", "bill", "bob", "brandon", "brian",
	"bruce", "bryan", "carl", "carlos", "charles", "chris", "christian", "christopher", "colin", "connor",
	"craig", "dan", "daniel", "dave", "david", "dennis", "derek", "diego", "dominic", "donald",
	"douglas", "dylan", "eddie", "edward", "eric", "ethan", "evan", "felix", "frank", "gabriel",
	"gary", "george", "greg", "gregory", "harry", "henry", "ian", "isaac", "ivan", "jack",
	"jacob", "jake", "james", "jason", "jeff", "jeffrey", "jeremy", "jerry", "jim", "joe",
	"joel", "john", "jonathan", "jordan", "jose", "joseph", "josh", "joshua", "juan", "justin",
	"kamil", "keith", "kevin", "kyle", "larry", "leo", "liam", "logan", "louis", "lucas",
	"luis", "luke", "marcin", "marco", "marcus", "mark", "martin", "mateusz", "matt", "matthew",
	"max", "michael", "michal", "miguel", "mike", "mohamed", "mohammed", "muhammad", "nathan", "nick",
	"nicholas", "noah", "oliver", "omar", "oscar", "patrick", "paul", "pedro", "peter", "philip",
	"piotr", "rafael", "ray", "raymond", "ricardo", "richard", "rick", "robert", "roger", "ronald",
	"ryan", "sam", "samuel", "scott", "sean", "sebastian", "sergio", "simon", "stephen", "steve",
	"steven", "thomas", "tim", "timothy", "todd", "tom", "tomasz", "tony", "travis", "tyler",
	"victor", "vincent", "walter", "wayne", "william", "wojciech", "zach", "zachary",
)

var femaleNames = set(
	"abigail", "agnieszka", "alice", "alicia", "alison", "amanda", "amber", "amelia", "amy", "ana",
	"andrea", "angela", "anna", "anne", "ashley", "barbara", "beata", "betty", "brenda", "brittany",
	"carmen", "carol", "caroline", "catherine", "charlotte", "chloe", "christina", "christine", "claire", "cynthia",
	"daniela", "deborah", "diana", "donna", "dorota", "elena", "elizabeth", "ella", "emily", "emma",
	"eva", "ewa", "fatima", "gabriela", "grace", "hannah", "heather", "helen", "isabella", "jane",
	"janet", "jennifer", "jessica", "joanna", "julia", "julie", "karen", "kasia", "katarzyna", "kate",
	"katherine", "kathleen", "kelly", "kimberly", "laura", "lauren", "linda", "lisa", "lucy", "magdalena",
	"maria", "marie", "marta", "mary", "megan", "melissa", "mia", "michelle", "monika", "nancy",
	"natalia", "natalie", "nicole", "olivia", "pamela", "patricia", "rachel", "rebecca", "rose", "ruth",
	"samantha", "sandra", "sara", "sarah", "sharon", "sofia", "sophia", "sophie", "stephanie", "susan",
	"tiffany", "valentina", "victoria", "zoe", "zofia",
)
