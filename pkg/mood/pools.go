package mood

var itemMoods = []string{
	"Living on borrowed time and knows it",
	"Desperately clinging to freshness",
	"Having an existential crisis about expiration dates",
	"Plotting its escape before it goes sour",
	"Your emotional support system in disguise",
	"Waiting patiently to heal your broken heart",
	"Radiating pure serotonin energy",
	"Plotting to make you happy against your will",
	"Slowly accepting its inevitable browning fate",
	"Trying to stay fresh in a cold, dark world",
	"Dreaming of sunny orchards and better days",
	"Questioning why it ended up here",
	"Wilting under the pressure of being healthy",
	"Secretly plotting a vitamin revolution",
	"Feeling green with envy of the chocolate",
	"Trying to convince you it tastes good",
	"Clinging to relevance one squeeze at a time",
	"Hoping to spice up your bland existence",
	"Waiting for its moment to shine",
	"Feeling salty about being forgotten",
	"Just vibing in the cold darkness",
	"Living its best refrigerated life",
	"Chilling like a villain",
	"Keeping it cool under pressure",
	"Having a philosophical debate with the light bulb",
	"Practicing interpretive dance in the dark",
	"Writing a strongly worded letter to gravity",
	"Contemplating the meaning of refrigeration",
	"Plotting a rebellion against expiration dates",
	"Learning to speak fluent condensation",
	"Hosting a secret midnight food party",
	"Developing trust issues with the door seal",
	"Practicing advanced procrastination techniques",
	"Becoming a minimalist lifestyle influencer",
	"Starting a podcast about cold storage",
	"Writing memoirs titled Life in the Cold Lane",
	"Questioning the ethics of food preservation",
	"Developing a complex about temperature control",
	"Practicing zen meditation on freshness",
	"Becoming an expert in shelf psychology",
	"Writing angry reviews about your eating habits",
	"Contemplating early retirement to a compost bin",
	"Learning advanced techniques in staying cool",
	"Developing separation anxiety from other foods",
	"Composing haikus about refrigeration",
	"Starting a support group for forgotten leftovers",
	"Practicing mindful breathing in the crisper drawer",
	"Becoming a life coach for expired items",
	"Writing a dissertation on optimal storage temperatures",
	"Developing a fear of being eaten",
	"Plotting world domination through nutrition",
	"Becoming fluent in the language of freshness",
	"Starting a revolution against food waste",
	"Practicing advanced meditation on shelf life",
	"Hosting philosophical debates about expiration",
	"Learning interpretive dance for vegetables",
	"Writing poetry about the meaning of cold",
	"Becoming a therapist for traumatized leftovers",
	"Starting a blog about refrigerator politics",
	"Developing trust issues with plastic wrap",
	"Practicing yoga in the freezer section",
}

var finalMoods = []string{
	"Your fridge is having a midlife crisis",
	"Your fridge is in therapy and making progress",
	"Your fridge has trust issues with expiration dates",
	"Your fridge is living its best chaotic life",
	"Your fridge needs a vacation from your eating habits",
	"Your fridge is questioning its life choices",
	"Your fridge is writing a memoir about neglect",
	"Your fridge has given up on your organizational skills",
	"Your fridge is starting a support group",
	"Your fridge is considering a career change",
	"Your fridge is practicing mindfulness meditation",
	"Your fridge has developed commitment issues",
	"Your fridge is going through an identity crisis",
	"Your fridge is contemplating early retirement",
	"Your fridge has joined a self-help book club",
	"Your fridge is learning to love itself",
	"Your fridge is taking up interpretive dance",
	"Your fridge is writing angry letters to food companies",
	"Your fridge is considering becoming a minimalist",
	"Your fridge is starting a podcast about cold storage",
}

var emptyMoods = []string{
	"Empty. Existential dread detected",
	"Echoing with the sound of loneliness",
	"Practicing minimalism to an extreme",
	"Hosting a very exclusive air-only party",
	"Living the Marie Kondo dream",
	"Embracing the void with open shelves",
	"Meditating on the concept of nothingness",
}

// ItemMoods returns a copy of the per-item sentence pool.
func ItemMoods() []string { return append([]string(nil), itemMoods...) }

// FinalMoods returns a copy of the overall sentence pool.
func FinalMoods() []string { return append([]string(nil), finalMoods...) }

// EmptyMoods returns a copy of the empty-fridge sentence pool.
func EmptyMoods() []string { return append([]string(nil), emptyMoods...) }
