package mysql

// Partition tables are named after the sanitized city; the name is
// validated by checkPartition before being spliced into these templates.

// partitionComment marks hotel tables so unrelated tables in the schema
// are never taken for a city.
const partitionComment = "trip_hotels partition"

const listPartitionsSQL = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_comment = ?
ORDER BY table_name
`

const tableCommentSQL = `
SELECT table_comment
FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_name = ?
`

const createPartitionSQL = "CREATE TABLE IF NOT EXISTS `%s` (\n" +
	"  id             BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,\n" +
	"  title          VARCHAR(255) NOT NULL,\n" +
	"  rating         DOUBLE       NULL,\n" +
	"  location       VARCHAR(512) NOT NULL,\n" +
	"  latitude       DOUBLE       NOT NULL,\n" +
	"  longitude      DOUBLE       NOT NULL,\n" +
	"  room_type      VARCHAR(255) NOT NULL,\n" +
	"  discount_price DOUBLE       NULL,\n" +
	"  base_price     DOUBLE       NULL,\n" +
	"  image_ref      VARCHAR(1024) NULL\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COMMENT='" + partitionComment + "'"

const insertHotelsPrefix = "INSERT INTO `%s`\n" +
	"  (title, rating, location, latitude, longitude, room_type, discount_price, base_price, image_ref)\nVALUES "

const hotelPlaceholders = "(?,?,?,?,?,?,?,?,?)"

const listHotelsSQL = "SELECT id, title, rating, location, latitude, longitude, room_type, discount_price, base_price, image_ref\n" +
	"FROM `%s`\n" +
	"ORDER BY id\n" +
	"LIMIT ?"
