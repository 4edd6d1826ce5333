package tour

import "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"

const (
	msgGreeting = "Привет! 👋 Я твой гид по виртуальному выставочному фонду ОЦ «Сириус». " +
		"Моя цель — рассказать об экспонатах и истории, которые делают каждую выставку уникальной.\n\n" +
		"Но сначала давай познакомимся! Расскажи немного о себе: сколько тебе лет, чем ты увлекаешься? " +
		"Что тебя привело в наше пространство — ты здесь ради вдохновения, учебы или просто решил(а) интересно провести время? " +
		"Чем больше я о тебе узнаю, тем более персонализированной будет твоя экскурсия! 😊"

	msgChooseLength       = "Я очень рад с вами познакомиться! Теперь выберите продолжительность экскурсии:"
	msgWhatToSee          = "Что бы вы хотели посмотреть в музее сегодня?"
	msgPreparingRoute     = "Подождите немного, я готовлю ваш маршрут... ⏳"
	msgReady              = "Вы готовы начать экскурсию?"
	msgNoArtworks         = "К сожалению, я не нашёл подходящих экспонатов. Попробуйте описать пожелания иначе или завершите маршрут."
	msgProcessingArtwork  = "Обрабатываю ваш запрос... Подождите немного! ⏳"
	msgProcessingQuestion = "Обрабатываю ваш вопрос... Подождите немного! ⏳"
	msgAskOrNext          = "Задайте вопрос о текущем экспонате или нажмите ниже, чтобы перейти к следующему."
	msgAskLast            = "Задайте вопрос о текущем экспонате. Это последний экспонат нашего маршрута!"
	msgTryAgain           = "Что-то пошло не так, и я не смог обработать ваш запрос. Пожалуйста, попробуйте ещё раз."
	msgMuseumLinkPrefix   = "Продолжить знакомство с миром искусства вы можете на сайте: "
)

var (
	lengthKeyboard = []entity.Button{
		{Label: "🕒 Экспресс", Tag: entity.TagShort},
		{Label: "⏳ Стандарт", Tag: entity.TagMedium},
		{Label: "🕰 Полное погружение", Tag: entity.TagLong},
	}
	readyKeyboard = []entity.Button{{Label: "Да, я готов(а)", Tag: entity.TagNextArtwork}}
	nextKeyboard  = []entity.Button{{Label: "Следующий экспонат", Tag: entity.TagNextArtwork}}
	endKeyboard   = []entity.Button{{Label: "Завершить маршрут", Tag: entity.TagEndTour}}
)
