package mockserver

import "github.com/miniden/webchat/internal/models"

// defaultFaq is the built-in FAQ fixture served when no custom set is given.
func defaultFaq() []models.FaqItem {
	return []models.FaqItem{
		{ID: 1, Category: "Доставка", Question: "Сколько идёт доставка?",
			Answer: "Обычно 2–5 рабочих дней по России."},
		{ID: 2, Category: "Доставка", Question: "Можно ли отследить заказ?",
			Answer: "Да, трек-номер приходит после отправки."},
		{ID: 3, Category: "Оплата", Question: "Какие способы оплаты доступны?",
			Answer: "Карты, СБП и оплата при получении."},
		{ID: 4, Category: "Возврат", Question: "Как оформить возврат?",
			Answer: "Напишите нам в чат или в Telegram в течение 14 дней."},
	}
}
