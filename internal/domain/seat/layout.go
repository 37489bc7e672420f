package seat

import "fmt"

var (
	firstColumns    = []string{"A", "B", "C", "D"}
	standardColumns = []string{"A", "B", "C", "D", "E", "F"}
)

// GenerateLayout は機材のクラス別座席数からフライトの座席一覧を生成する
// ファーストクラスは前方の横4列（A-D）、ビジネス・エコノミーは横6列（A-F）で配置する
func GenerateLayout(flightID int64, economySeats, businessSeats, firstSeats int) []*Seat {
	seats := make([]*Seat, 0, economySeats+businessSeats+firstSeats)

	row := 1
	row = appendRows(&seats, flightID, ClassFirst, firstSeats, row, firstColumns)
	row = appendRows(&seats, flightID, ClassBusiness, businessSeats, row, standardColumns)
	appendRows(&seats, flightID, ClassEconomy, economySeats, row, standardColumns)

	return seats
}

func appendRows(seats *[]*Seat, flightID int64, class Class, count, startRow int, columns []string) int {
	row := startRow
	added := 0
	for added < count {
		for _, col := range columns {
			if added >= count {
				break
			}
			number := fmt.Sprintf("%d%s", row, col)
			isWindow := col == columns[0] || col == columns[len(columns)-1]
			isAisle := isAisleColumn(col, len(columns))
			*seats = append(*seats, NewSeat(flightID, number, class, isWindow, isAisle))
			added++
		}
		row++
	}
	return row
}

func isAisleColumn(col string, width int) bool {
	if width == 4 {
		return col == "B" || col == "C"
	}
	return col == "C" || col == "D"
}
