package itemdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
)

const dump = "-- MySQL dump\n" +
	"CREATE TABLE `items` (`entry` int, `item_id` int, `class` int, `subclass` int, `name` varchar(255), `frost_res` int);\n" +
	"INSERT INTO `items` (`entry`,`item_id`,`class`,`subclass`,`name`,`frost_res`) VALUES " +
	"(1,22652,4,1,'Glacial Vest',44),\n" +
	"(2,19019,2,7,'Thunderfury, Blessed Blade of the Windseeker',0),\n" +
	"(3,22654,4,1,'Glacial Gloves',24),\n" +
	"(4,12345,4,1,'Kel\\'Thuzad''s Cloak',10),\n" +
	"(5,99,4,1,'Broken',NULL);\n" +
	"INSERT INTO `other` (`item_id`,`name`,`frost_res`) VALUES (7,'Ignored',99);\n" +
	"INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES (22669, 'Icebane Breastplate', 42);\n"

func TestParseDump(t *testing.T) {
	got, stats, err := ParseDump(strings.NewReader(dump), "items", ItemColumns)
	require.NoError(t, err)

	assert.Equal(t, Stats{Statements: 2, Rows: 6, Kept: 4}, stats)
	assert.Equal(t, []models.ItemResist{
		{ID: 22652, Name: "Glacial Vest", FrostResist: 44},
		{ID: 22654, Name: "Glacial Gloves", FrostResist: 24},
		{ID: 12345, Name: "Kel'Thuzad's Cloak", FrostResist: 10},
		{ID: 22669, Name: "Icebane Breastplate", FrostResist: 42},
	}, got)
}

func TestParseDump_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no insert", input: "CREATE TABLE items (id int);"},
		{name: "missing column", input: "INSERT INTO `items` (`item_id`,`name`) VALUES (1,'a');"},
		{name: "unterminated string", input: "INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES (1,'abc,5);"},
		{name: "unterminated tuple", input: "INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES (1,'abc',5"},
		{name: "width mismatch", input: "INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES (1,'abc');"},
		{name: "junk between tuples", input: "INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES (1,'a',5) x (2,'b',6);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDump(strings.NewReader(tt.input), "items", ItemColumns)
			require.Error(t, err)
		})
	}

	_, _, err := ParseDump(strings.NewReader("SELECT 1;"), "items", ItemColumns)
	assert.ErrorIs(t, err, ErrNoInsert)
}
