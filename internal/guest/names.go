package guest

import "math/rand"

var adjectives = []string{
	// cảm xúc tích cực
	"Hạnh phúc", "Vui vẻ", "Hí hửng", "Hân hoan", "Phấn khởi", "Tươi tắn",
	"Rạng rỡ", "Yêu đời", "Lạc quan", "Sung sướng", "Ngọt ngào", "Ấm áp",
	"Bình yên", "Thanh thản", "Nhẹ nhõm", "Sảng khoái", "Hài lòng", "Toại nguyện",
	"Tự hào", "Tràn đầy năng lượng", "Phấn chấn", "Háo hức",

	// tính cách
	"Hồn nhiên", "Nhí nhố", "Dễ thương", "Đáng yêu", "Tinh nghịch", "Nghịch ngợm",
	"Lém lỉnh", "Tò mò", "Hiếu kỳ", "Thông thái", "Minh mẫn", "Sắc sảo",
	"Dũng cảm", "Quả cảm", "Kiên cường", "Tốt bụng", "Nhân hậu", "Chân thành",
	"Khiêm tốn", "Giản dị", "Năng động", "Hoạt bát", "Sôi nổi", "Trầm tính",
	"Ít nói", "Bí ẩn", "Lạnh lùng", "Kiêu kỳ", "Mộng mơ", "Lãng đãng",

	// miêu tả
	"Lấp lánh", "Óng ánh", "Rực rỡ", "Nhảy múa", "Phiêu du", "Du mục",
	"Ngái ngủ", "Mơ màng", "Đang bay", "Lơ lửng", "Vô hình", "Bí mật",
	"Âm thầm", "Thầm lặng", "Tí hon", "Khổng lồ", "Thần tiên", "Diệu kỳ",
	"Ma thuật", "Huyền ảo", "Cổ điển", "Hoài niệm", "Tinh khôi", "Trong trẻo",
}

var creatures = []string{
	"Cún", "Mèo Ú", "Gấu Trúc", "Sóc Chuột", "Thỏ Con", "Cáo", "Sói",
	"Hổ", "Sư Tử", "Báo", "Voi", "Tê Giác", "Hươu Cao Cổ", "Ngựa Vằn",
	"Lạc Đà", "Koala", "Kangaroo", "Gấu Túi", "Chồn Đất", "Nhím", "Lười",

	"Cá Heo", "Cá Voi", "Cá Mập", "Hải Cẩu", "Sư Tử Biển", "Rái Cá",
	"Bạch Tuộc", "Mực", "Sứa", "Sao Biển", "Cá Ngựa", "Rùa Biển", "Cá Hề",

	"Vẹt", "Sáo", "Đại Bàng", "Cú Mèo", "Chim Cánh Cụt", "Hồng Hạc",
	"Thiên Nga", "Công", "Đà Điểu", "Chim Ruồi",

	"Tắc Kè Hoa", "Kỳ Nhông", "Cá Sấu", "Ếch Cây",

	"Bướm", "Chuồn Chuồn", "Bọ Rùa", "Ong Mật",

	"Rồng", "Phượng Hoàng", "Kỳ Lân",
}

// Name returns "<creature> <adjective>", e.g. "Cáo Vui vẻ".
func Name(r *rand.Rand) string {
	return creatures[r.Intn(len(creatures))] + " " + adjectives[r.Intn(len(adjectives))]
}
