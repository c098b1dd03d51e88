package inmemdb

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

// LoadSeed reads the fallback collections from a YAML file keyed by collection name:
//
//	students:
//	  - name: Amina Yusuf
//	    email: amina@school.test
//
// A missing file yields DefaultSeed().
func LoadSeed(path string) (map[school.Kind][]school.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSeed(), nil
		}
		return nil, errors.Wrap(err, "reading seed file")
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (map[school.Kind][]school.Record, error) {
	var raw map[string][]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing seed file")
	}

	seed := make(map[school.Kind][]school.Record, len(raw))
	for name, rows := range raw {
		kind, err := school.ParseKind(name)
		if err != nil {
			return nil, errors.Wrapf(err, "seed collection %q", name)
		}
		for i, row := range rows {
			if len(row) == 0 {
				return nil, errors.Errorf("seed collection %q: record #%d is empty", name, i+1)
			}
			seed[kind] = append(seed[kind], school.Record(row))
		}
	}
	return seed, nil
}

// DefaultSeed is the demo dataset served when no seed file exists.
func DefaultSeed() map[school.Kind][]school.Record {
	return map[school.Kind][]school.Record{
		school.KindStudent: {
			{"name": "Amina Yusuf", "email": "amina.yusuf@school.test", "grade": "10", "rollNumber": "S-1001"},
			{"name": "Bilal Ahmed", "email": "bilal.ahmed@school.test", "grade": "9", "rollNumber": "S-1002"},
			{"name": "Chloe Martin", "email": "chloe.martin@school.test", "grade": "10", "rollNumber": "S-1003"},
		},
		school.KindTeacher: {
			{"name": "Sara Malik", "email": "sara.malik@school.test", "subject": "Mathematics"},
			{"name": "John Okafor", "email": "john.okafor@school.test", "subject": "Physics"},
		},
		school.KindAssignment: {
			{"title": "Algebra worksheet 3", "subject": "Mathematics", "dueDate": "2024-03-15"},
		},
		school.KindAttendance: {
			{"student": "S-1001", "date": "2024-03-01", "status": "present"},
			{"student": "S-1002", "date": "2024-03-01", "status": "absent"},
		},
	}
}
